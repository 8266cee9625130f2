package cmd

import (
	"github.com/fatih/color"

	"github.com/securiscan/securiscan-cli/internal/domain/scan"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
	colorHeading = color.New(color.Bold).SprintFunc()
)

// sectionColor picks the console colour for a section's finding lines
func sectionColor(section scan.Category) func(a ...interface{}) string {
	switch section {
	case scan.CategoryOutdatedLibrary, scan.CategoryAdvancedVulnerability:
		return colorError
	case scan.CategoryExposedAdminPanel, scan.CategoryMissingHeader:
		return colorWarn
	default:
		return colorInfo
	}
}
