package scan

import (
	"fmt"

	sharedErrors "github.com/securiscan/securiscan-cli/internal/shared/errors"
)

// Category classifies a finding
type Category string

const (
	CategoryOutdatedLibrary       Category = "outdated_library"
	CategoryExposedAdminPanel     Category = "exposed_admin_panel"
	CategoryMissingHeader         Category = "missing_header"
	CategoryAdvancedVulnerability Category = "advanced_vulnerability"
	CategoryInformational         Category = "informational"
)

// Sections lists the result sections in report order. Each probe owns one.
var Sections = []Category{
	CategoryOutdatedLibrary,
	CategoryExposedAdminPanel,
	CategoryMissingHeader,
	CategoryAdvancedVulnerability,
}

// ParseCategory converts a stored category name back into a Category
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryOutdatedLibrary, CategoryExposedAdminPanel, CategoryMissingHeader,
		CategoryAdvancedVulnerability, CategoryInformational:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", sharedErrors.ErrUnknownCategory, s)
}

// Title returns the human-readable section heading
func (c Category) Title() string {
	switch c {
	case CategoryOutdatedLibrary:
		return "Outdated Libraries"
	case CategoryExposedAdminPanel:
		return "Exposed Admin Panels"
	case CategoryMissingHeader:
		return "Missing Security Headers"
	case CategoryAdvancedVulnerability:
		return "Advanced Vulnerabilities Detected"
	case CategoryInformational:
		return "Informational"
	}
	return string(c)
}

// CleanMessage is what the reporter prints when a section has no findings
func (c Category) CleanMessage() string {
	switch c {
	case CategoryOutdatedLibrary:
		return "No outdated libraries detected."
	case CategoryExposedAdminPanel:
		return "No exposed admin panels found."
	case CategoryMissingHeader:
		return "All critical security headers are present."
	case CategoryAdvancedVulnerability:
		return "No advanced vulnerabilities detected."
	}
	return "No issues."
}

// Finding is a single reportable observation emitted by a probe
type Finding struct {
	Category Category
	Message  string
	Probe    string
}

// NewFinding creates a finding
func NewFinding(category Category, probe, message string) Finding {
	return Finding{Category: category, Message: message, Probe: probe}
}

// Informational creates a sentinel finding that reports a skipped or degraded probe
func Informational(probe, message string) Finding {
	return NewFinding(CategoryInformational, probe, message)
}

// IsInformational reports whether the finding is a sentinel rather than an issue
func (f Finding) IsInformational() bool {
	return f.Category == CategoryInformational
}

func (f Finding) String() string {
	return f.Message
}
