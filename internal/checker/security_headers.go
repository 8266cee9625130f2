package checker

import (
	"context"
	"fmt"

	"github.com/securiscan/securiscan-cli/internal/domain/scan"
)

// RequiredSecurityHeaders are checked in this order
var RequiredSecurityHeaders = []string{
	"Strict-Transport-Security",
	"X-Content-Type-Options",
	"X-XSS-Protection",
}

// SecurityHeaderProbe reports required security headers absent from the page response
type SecurityHeaderProbe struct {
	fetcher Fetcher
}

// NewSecurityHeaderProbe creates the probe
func NewSecurityHeaderProbe(f Fetcher) *SecurityHeaderProbe {
	return &SecurityHeaderProbe{fetcher: f}
}

func (p *SecurityHeaderProbe) Name() string {
	return ProbeSecurityHeaders
}

func (p *SecurityHeaderProbe) Section() scan.Category {
	return scan.CategoryMissingHeader
}

// Check fetches the page once. A header counts as present even with an
// empty value; lookups are case-insensitive.
func (p *SecurityHeaderProbe) Check(ctx context.Context, target *Target) []scan.Finding {
	res := p.fetcher.Fetch(ctx, target.URL)
	if !res.OK() {
		return []scan.Finding{scan.Informational(p.Name(), "Failed to fetch headers")}
	}

	findings := []scan.Finding{}
	for _, name := range RequiredSecurityHeaders {
		if len(res.Header.Values(name)) == 0 {
			findings = append(findings, scan.NewFinding(
				scan.CategoryMissingHeader,
				p.Name(),
				fmt.Sprintf("Missing HTTP header: %s", name),
			))
		}
	}

	return findings
}
