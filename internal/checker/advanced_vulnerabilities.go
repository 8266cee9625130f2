package checker

import (
	"context"
	"fmt"
	"strings"

	"github.com/securiscan/securiscan-cli/internal/domain/scan"
)

const (
	// csrfTokenMarker is matched literally; other quoting or token names do not count
	csrfTokenMarker = "input type='hidden' name='_csrf' value="
	traversalMarker = "../"
)

// AdvancedVulnerabilityProbe applies textual CSRF and path traversal heuristics to the page body
type AdvancedVulnerabilityProbe struct {
	fetcher Fetcher
}

// NewAdvancedVulnerabilityProbe creates the probe
func NewAdvancedVulnerabilityProbe(f Fetcher) *AdvancedVulnerabilityProbe {
	return &AdvancedVulnerabilityProbe{fetcher: f}
}

func (p *AdvancedVulnerabilityProbe) Name() string {
	return ProbeAdvancedVulnerabilities
}

func (p *AdvancedVulnerabilityProbe) Section() scan.Category {
	return scan.CategoryAdvancedVulnerability
}

// Check fetches the page once. When the fetch fails neither heuristic runs
// and only a could-not-complete sentinel is returned.
func (p *AdvancedVulnerabilityProbe) Check(ctx context.Context, target *Target) []scan.Finding {
	res := p.fetcher.Fetch(ctx, target.URL)
	if !res.OK() {
		return []scan.Finding{scan.Informational(p.Name(), "Failed to fetch page")}
	}

	findings := []scan.Finding{}
	if !strings.Contains(res.Body, csrfTokenMarker) {
		findings = append(findings, scan.NewFinding(
			scan.CategoryAdvancedVulnerability,
			p.Name(),
			fmt.Sprintf("Potential CSRF vulnerability detected in %s", target.URL),
		))
	}
	if strings.Contains(res.Body, traversalMarker) {
		findings = append(findings, scan.NewFinding(
			scan.CategoryAdvancedVulnerability,
			p.Name(),
			fmt.Sprintf("Potential Directory Traversal vulnerability detected in %s", target.URL),
		))
	}

	return findings
}
