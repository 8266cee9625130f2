package checker

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sourcegraph/conc/pool"

	"github.com/securiscan/securiscan-cli/internal/domain/scan"
	"github.com/securiscan/securiscan-cli/internal/fetcher"
)

// AdminPaths are the well-known admin endpoints probed on remote targets
var AdminPaths = []string{"/admin", "/wp-admin", "/administrator"}

// AdminPanelProbe looks for admin endpoints answering 200
type AdminPanelProbe struct {
	fetcher Fetcher
	paths   []string
}

// NewAdminPanelProbe creates the probe for the fixed AdminPaths list
func NewAdminPanelProbe(f Fetcher) *AdminPanelProbe {
	return &AdminPanelProbe{fetcher: f, paths: AdminPaths}
}

func (p *AdminPanelProbe) Name() string {
	return ProbeAdminPanels
}

func (p *AdminPanelProbe) Section() scan.Category {
	return scan.CategoryExposedAdminPanel
}

type adminFetch struct {
	url string
	res fetcher.Result
}

// Check skips local targets without any network access. Otherwise every
// path is fetched concurrently; finding order follows completion order.
func (p *AdminPanelProbe) Check(ctx context.Context, target *Target) []scan.Finding {
	if target.IsLocal {
		return []scan.Finding{scan.Informational(p.Name(), "Skipping admin panel check for local environment")}
	}

	workers := pool.NewWithResults[adminFetch]().WithMaxGoroutines(len(p.paths))
	for _, path := range p.paths {
		u := target.JoinPath(path)
		workers.Go(func() adminFetch {
			return adminFetch{url: u, res: p.fetcher.Fetch(ctx, u)}
		})
	}
	fetches := workers.Wait()

	findings := []scan.Finding{}
	failed := 0
	for _, f := range fetches {
		if !f.res.OK() {
			failed++
			continue
		}
		if f.res.StatusCode == http.StatusOK {
			findings = append(findings, scan.NewFinding(
				scan.CategoryExposedAdminPanel,
				p.Name(),
				fmt.Sprintf("Exposed admin panel found: %s", f.url),
			))
		}
	}

	if failed == len(p.paths) {
		return []scan.Finding{scan.Informational(p.Name(), "Failed to fetch admin panel paths")}
	}

	return findings
}
