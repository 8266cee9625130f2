package checker

import (
	"context"

	"github.com/securiscan/securiscan-cli/internal/domain/scan"
	"github.com/securiscan/securiscan-cli/internal/fetcher"
)

// Probe names, used as the origin of every finding
const (
	ProbeOutdatedLibraries       = "outdated-libraries"
	ProbeAdminPanels             = "admin-panels"
	ProbeSecurityHeaders         = "security-headers"
	ProbeAdvancedVulnerabilities = "advanced-vulnerabilities"
)

// Fetcher is the HTTP primitive probes depend on
type Fetcher interface {
	Fetch(ctx context.Context, url string) fetcher.Result
}

// Probe is the interface that all checks must satisfy
type Probe interface {
	// Name returns the probe identifier (e.g., "security-headers")
	Name() string

	// Section returns the result section the probe's findings belong to
	Section() scan.Category

	// Check inspects the target. It never returns an error: failures are
	// reported as informational findings.
	Check(ctx context.Context, target *Target) []scan.Finding
}

// DefaultProbes returns the four built-in probes wired to f
func DefaultProbes(f Fetcher, libraries []VulnerableLibrary) []Probe {
	if len(libraries) == 0 {
		libraries = DefaultVulnerableLibraries()
	}
	return []Probe{
		NewOutdatedLibraryProbe(f, libraries),
		NewAdminPanelProbe(f),
		NewSecurityHeaderProbe(f),
		NewAdvancedVulnerabilityProbe(f),
	}
}
