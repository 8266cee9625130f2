package checker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/securiscan/securiscan-cli/internal/domain/scan"
)

// VulnerableLibrary maps a library name to versions known to be vulnerable
type VulnerableLibrary struct {
	Name     string
	Versions []string
}

// DefaultVulnerableLibraries returns the seed table, in match order
func DefaultVulnerableLibraries() []VulnerableLibrary {
	return []VulnerableLibrary{
		{Name: "jquery", Versions: []string{"3.5.1", "3.4.1"}},
		{Name: "bootstrap", Versions: []string{"3.3.7", "4.0.0"}},
	}
}

// MergeVulnerableLibraries appends extra entries to base. Versions for a
// library already in base are added after the existing ones; new libraries
// follow in name order so the table stays deterministic.
func MergeVulnerableLibraries(base []VulnerableLibrary, extra map[string][]string) []VulnerableLibrary {
	merged := make([]VulnerableLibrary, 0, len(base)+len(extra))
	index := make(map[string]int, len(base))
	for _, lib := range base {
		index[lib.Name] = len(merged)
		merged = append(merged, VulnerableLibrary{Name: lib.Name, Versions: append([]string(nil), lib.Versions...)})
	}

	names := make([]string, 0, len(extra))
	for name := range extra {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if name == "" {
			continue
		}
		i, ok := index[name]
		if !ok {
			index[name] = len(merged)
			merged = append(merged, VulnerableLibrary{Name: name})
			i = len(merged) - 1
		}
		for _, v := range extra[name] {
			if v != "" && !containsString(merged[i].Versions, v) {
				merged[i].Versions = append(merged[i].Versions, v)
			}
		}
	}

	return merged
}

// OutdatedLibraryProbe flags script tags whose src names a vulnerable library version
type OutdatedLibraryProbe struct {
	fetcher   Fetcher
	libraries []VulnerableLibrary
}

// NewOutdatedLibraryProbe creates the probe with the given library table
func NewOutdatedLibraryProbe(f Fetcher, libraries []VulnerableLibrary) *OutdatedLibraryProbe {
	return &OutdatedLibraryProbe{fetcher: f, libraries: libraries}
}

func (p *OutdatedLibraryProbe) Name() string {
	return ProbeOutdatedLibraries
}

func (p *OutdatedLibraryProbe) Section() scan.Category {
	return scan.CategoryOutdatedLibrary
}

// Check fetches the page once and matches every script src against the table
func (p *OutdatedLibraryProbe) Check(ctx context.Context, target *Target) []scan.Finding {
	res := p.fetcher.Fetch(ctx, target.URL)
	if !res.OK() {
		return []scan.Finding{scan.Informational(p.Name(), "Failed to fetch page")}
	}

	findings := []scan.Finding{}
	for _, src := range ScriptSources(res.Body) {
		for _, lib := range p.libraries {
			if !strings.Contains(src, lib.Name) {
				continue
			}
			for _, version := range lib.Versions {
				if strings.Contains(src, version) {
					findings = append(findings, scan.NewFinding(
						scan.CategoryOutdatedLibrary,
						p.Name(),
						fmt.Sprintf("Vulnerable %s version found: %s in %s", lib.Name, version, src),
					))
				}
			}
		}
	}

	return findings
}

// ScriptSources returns the src attribute of every <script> tag in document
// order. Scripts without a src are skipped.
func ScriptSources(body string) []string {
	var sources []string

	z := html.NewTokenizer(strings.NewReader(body))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sources
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "script" {
				continue
			}
			src := ""
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "src" && src == "" {
					src = string(val)
				}
			}
			if src != "" {
				sources = append(sources, src)
			}
		}
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
