package scan

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/securiscan/securiscan-cli/internal/checker"
	"github.com/securiscan/securiscan-cli/internal/domain/scan"
	"github.com/securiscan/securiscan-cli/internal/fetcher"
	"github.com/securiscan/securiscan-cli/internal/logging"
	sharedErrors "github.com/securiscan/securiscan-cli/internal/shared/errors"
)

type stubProbe struct {
	name     string
	section  scan.Category
	findings []scan.Finding
	panicMsg string
	calls    atomic.Int32
}

func (p *stubProbe) Name() string           { return p.name }
func (p *stubProbe) Section() scan.Category { return p.section }

func (p *stubProbe) Check(ctx context.Context, target *checker.Target) []scan.Finding {
	p.calls.Add(1)
	if p.panicMsg != "" {
		panic(p.panicMsg)
	}
	return p.findings
}

func fastFetcher() *fetcher.Fetcher {
	return fetcher.New(fetcher.Options{
		Retries:    3,
		Timeout:    time.Second,
		RetryDelay: 10 * time.Millisecond,
		Logger:     logging.Nop(),
	})
}

func TestOrchestrator_InvalidTargetRunsNoProbes(t *testing.T) {
	probe := &stubProbe{name: "stub", section: scan.CategoryMissingHeader}
	o := NewOrchestrator([]checker.Probe{probe}, logging.Nop())

	for _, raw := range []string{"", "   ", "ftp://example.com", "http://"} {
		result, err := o.Scan(context.Background(), raw)
		if err == nil {
			t.Fatalf("Scan(%q) expected error", raw)
		}
		if !errors.Is(err, sharedErrors.ErrInvalidTarget) && !errors.Is(err, sharedErrors.ErrEmptyTarget) {
			t.Errorf("Scan(%q) error = %v, want invalid or empty target", raw, err)
		}
		if result != nil {
			t.Errorf("Scan(%q) returned a result alongside the error", raw)
		}
	}

	if probe.calls.Load() != 0 {
		t.Fatalf("probes must not run for invalid targets, ran %d times", probe.calls.Load())
	}
}

func TestOrchestrator_AssemblesSectionsInOrder(t *testing.T) {
	probes := []checker.Probe{
		&stubProbe{name: "adv", section: scan.CategoryAdvancedVulnerability, findings: []scan.Finding{
			scan.NewFinding(scan.CategoryAdvancedVulnerability, "adv", "b"),
			scan.NewFinding(scan.CategoryAdvancedVulnerability, "adv", "a"),
		}},
		&stubProbe{name: "libs", section: scan.CategoryOutdatedLibrary},
		&stubProbe{name: "headers", section: scan.CategoryMissingHeader, findings: []scan.Finding{
			scan.NewFinding(scan.CategoryMissingHeader, "headers", "Missing HTTP header: X-XSS-Protection"),
		}},
	}

	result, err := NewOrchestrator(probes, logging.Nop()).Scan(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if result.Target() != "https://example.com" {
		t.Errorf("Target() = %q", result.Target())
	}
	if got := result.Messages(scan.CategoryAdvancedVulnerability); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("advanced findings must keep emission order, got %v", got)
	}
	if !result.NoIssues(scan.CategoryOutdatedLibrary) || !result.NoIssues(scan.CategoryExposedAdminPanel) {
		t.Error("sections without findings should report no issues")
	}
	if result.TotalFindings() != 3 {
		t.Errorf("TotalFindings() = %d, want 3", result.TotalFindings())
	}
}

func TestOrchestrator_ProbePanicIsContained(t *testing.T) {
	healthy := &stubProbe{name: "headers", section: scan.CategoryMissingHeader, findings: []scan.Finding{
		scan.NewFinding(scan.CategoryMissingHeader, "headers", "Missing HTTP header: Strict-Transport-Security"),
	}}
	broken := &stubProbe{name: "libs", section: scan.CategoryOutdatedLibrary, panicMsg: "boom"}

	result, err := NewOrchestrator([]checker.Probe{broken, healthy}, logging.Nop()).Scan(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	libs := result.Findings(scan.CategoryOutdatedLibrary)
	if len(libs) != 1 || libs[0].Message != "Probe libs aborted: boom" || !libs[0].IsInformational() {
		t.Fatalf("unexpected findings for panicking probe: %+v", libs)
	}
	if !result.Degraded(scan.CategoryOutdatedLibrary) {
		t.Error("panicking probe's section should be degraded")
	}
	if got := result.Messages(scan.CategoryMissingHeader); len(got) != 1 {
		t.Errorf("sibling probe should complete, got %v", got)
	}
}

func TestOrchestrator_ObserverSeesEveryProbe(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}

	o := NewOrchestrator(checker.DefaultProbes(newStaticFetcher(), nil), logging.Nop()).
		WithObserver(func(r ProbeReport) {
			mu.Lock()
			defer mu.Unlock()
			seen[r.Name]++
		})

	if _, err := o.Scan(context.Background(), "https://example.com"); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	want := map[string]int{
		checker.ProbeOutdatedLibraries:       1,
		checker.ProbeAdminPanels:             1,
		checker.ProbeSecurityHeaders:         1,
		checker.ProbeAdvancedVulnerabilities: 1,
	}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("observer saw %v, want %v", seen, want)
	}
	if !reflect.DeepEqual(o.Probes(), []string{
		checker.ProbeOutdatedLibraries,
		checker.ProbeAdminPanels,
		checker.ProbeSecurityHeaders,
		checker.ProbeAdvancedVulnerabilities,
	}) {
		t.Errorf("Probes() = %v", o.Probes())
	}
}

func TestOrchestrator_UnreachableTargetReturnsPromptly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := srv.URL
	srv.Close()

	f := fastFetcher()
	o := NewOrchestrator(checker.DefaultProbes(f, nil), logging.Nop())

	start := time.Now()
	result, err := o.Scan(context.Background(), target)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if elapsed > f.WorstCase()+time.Second {
		t.Fatalf("scan took %v, worst case is %v", elapsed, f.WorstCase())
	}

	want := map[scan.Category][]string{
		scan.CategoryOutdatedLibrary:       {"Failed to fetch page"},
		scan.CategoryExposedAdminPanel:     {"Skipping admin panel check for local environment"},
		scan.CategoryMissingHeader:         {"Failed to fetch headers"},
		scan.CategoryAdvancedVulnerability: {"Failed to fetch page"},
	}
	for section, msgs := range want {
		if got := result.Messages(section); !reflect.DeepEqual(got, msgs) {
			t.Errorf("section %s = %v, want %v", section, got, msgs)
		}
	}
	if result.TotalFindings() != 0 {
		t.Errorf("sentinels must not count as findings, got %d", result.TotalFindings())
	}
}

func TestOrchestrator_IdempotentAgainstStaticContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		_, _ = w.Write([]byte(`<html><script src="/js/jquery-3.5.1.min.js"></script><a href="../up">up</a></html>`))
	}))
	defer srv.Close()

	o := NewOrchestrator(checker.DefaultProbes(fastFetcher(), nil), logging.Nop())

	first, err := o.Scan(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("first Scan() error = %v", err)
	}
	second, err := o.Scan(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("second Scan() error = %v", err)
	}

	for _, section := range scan.Sections {
		if !reflect.DeepEqual(first.Messages(section), second.Messages(section)) {
			t.Errorf("section %s differs: %v vs %v", section, first.Messages(section), second.Messages(section))
		}
	}

	if got := first.Messages(scan.CategoryMissingHeader); !reflect.DeepEqual(got, []string{
		"Missing HTTP header: Strict-Transport-Security",
		"Missing HTTP header: X-XSS-Protection",
	}) {
		t.Errorf("missing headers = %v", got)
	}
	if got := first.Messages(scan.CategoryAdvancedVulnerability); len(got) != 2 {
		t.Errorf("expected CSRF and traversal findings, got %v", got)
	}
	if got := first.Messages(scan.CategoryOutdatedLibrary); len(got) != 1 {
		t.Errorf("expected one outdated library, got %v", got)
	}
}

// staticFetcher answers 200 with an empty body for every URL
type staticFetcher struct{}

func newStaticFetcher() staticFetcher { return staticFetcher{} }

func (staticFetcher) Fetch(ctx context.Context, url string) fetcher.Result {
	return fetcher.Result{URL: url, StatusCode: http.StatusOK, Header: http.Header{}, Attempts: 1}
}
