package checker

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"testing"

	"github.com/securiscan/securiscan-cli/internal/domain/scan"
	"github.com/securiscan/securiscan-cli/internal/fetcher"
)

// fakeFetcher answers from a fixed table; unknown URLs fail at transport level
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]fetcher.Result
	calls     []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{responses: map[string]fetcher.Result{}}
}

func (f *fakeFetcher) respond(url string, status int, header http.Header, body string) {
	if header == nil {
		header = http.Header{}
	}
	f.responses[url] = fetcher.Result{URL: url, StatusCode: status, Header: header, Body: body, Attempts: 1}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) fetcher.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if res, ok := f.responses[url]; ok {
		return res
	}
	return fetcher.Result{URL: url, Attempts: 3, Err: errors.New("connection refused")}
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func mustParseTarget(t *testing.T, raw string) *Target {
	t.Helper()
	target, err := ParseTarget(raw)
	if err != nil {
		t.Fatalf("ParseTarget(%q) error = %v", raw, err)
	}
	return target
}

func messages(findings []scan.Finding) []string {
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Message)
	}
	return out
}

func sortedMessages(findings []scan.Finding) []string {
	out := messages(findings)
	sort.Strings(out)
	return out
}
