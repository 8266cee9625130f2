package cmd

import (
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/securiscan/securiscan-cli/internal/domain/scan"
	"github.com/securiscan/securiscan-cli/internal/logging"
)

// setupTestAppContext installs an AppContext rooted in a temp results dir
// with a fast, single-attempt fetch configuration.
func setupTestAppContext(t *testing.T) *AppContext {
	t.Helper()

	original := globalAppContext
	originalNoColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		globalAppContext = original
		color.NoColor = originalNoColor
	})

	cfg := newCLIConfig()
	cfg.Scan.Retries = 1
	cfg.Scan.TimeoutSecs = 2
	cfg.Scan.RetryDelaySecs = 0

	appCtx := &AppContext{
		Logger:     logging.Nop(),
		ResultsDir: t.TempDir(),
		Config:     cfg,
	}
	globalAppContext = appCtx
	return appCtx
}

func newTestResult(t *testing.T, target string, sections map[scan.Category][]scan.Finding) *scan.Result {
	t.Helper()
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	result, err := scan.Assemble(target, started, started.Add(2*time.Second), sections)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	return result
}
