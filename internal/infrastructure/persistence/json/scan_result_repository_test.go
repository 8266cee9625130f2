package json

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/securiscan/securiscan-cli/internal/domain/scan"
	sharedErrors "github.com/securiscan/securiscan-cli/internal/shared/errors"
)

func sampleResult(t *testing.T, target string) *scan.Result {
	t.Helper()
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	result, err := scan.Assemble(target, started, started.Add(1500*time.Millisecond), map[scan.Category][]scan.Finding{
		scan.CategoryOutdatedLibrary: {
			scan.NewFinding(scan.CategoryOutdatedLibrary, "outdated-libraries", "Vulnerable jquery version found: 3.5.1 in /js/jquery-3.5.1.js"),
		},
		scan.CategoryExposedAdminPanel: {
			scan.Informational("admin-panels", "Failed to fetch admin panel paths"),
		},
		scan.CategoryMissingHeader: {
			scan.NewFinding(scan.CategoryMissingHeader, "security-headers", "Missing HTTP header: X-XSS-Protection"),
			scan.NewFinding(scan.CategoryMissingHeader, "security-headers", "Missing HTTP header: Strict-Transport-Security"),
		},
	})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	return result
}

func TestScanResultRepository_SaveAndFind(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewScanResultRepository(dir)
	if err != nil {
		t.Fatalf("NewScanResultRepository() error = %v", err)
	}

	original := sampleResult(t, "https://example.com/app")
	path, err := repo.Save(context.Background(), original)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if filepath.Base(path) != "example.com_app_scan.json" {
		t.Errorf("unexpected file name %q", filepath.Base(path))
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("saved file missing: %v", err)
	}

	loaded, err := repo.FindByTarget(context.Background(), "https://example.com/app")
	if err != nil {
		t.Fatalf("FindByTarget() error = %v", err)
	}

	if loaded.Target() != original.Target() {
		t.Errorf("Target() = %q, want %q", loaded.Target(), original.Target())
	}
	if !loaded.StartedAt().Equal(original.StartedAt()) || loaded.Duration() != original.Duration() {
		t.Errorf("timestamps not preserved: %v/%v", loaded.StartedAt(), loaded.Duration())
	}
	for _, section := range scan.Sections {
		if !reflect.DeepEqual(loaded.Findings(section), original.Findings(section)) {
			t.Errorf("section %s = %+v, want %+v", section, loaded.Findings(section), original.Findings(section))
		}
	}
	if !loaded.Degraded(scan.CategoryExposedAdminPanel) {
		t.Error("informational sentinel should survive a round trip")
	}
}

func TestScanResultRepository_SaveOverwrites(t *testing.T) {
	repo, err := NewScanResultRepository(t.TempDir())
	if err != nil {
		t.Fatalf("NewScanResultRepository() error = %v", err)
	}

	first := sampleResult(t, "http://example.com")
	if _, err := repo.Save(context.Background(), first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	started := time.Now().UTC()
	empty, err := scan.Assemble("http://example.com", started, started, nil)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if _, err := repo.Save(context.Background(), empty); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := repo.FindByTarget(context.Background(), "http://example.com")
	if err != nil {
		t.Fatalf("FindByTarget() error = %v", err)
	}
	if loaded.TotalFindings() != 0 {
		t.Errorf("expected latest record, got %d findings", loaded.TotalFindings())
	}
}

func TestScanResultRepository_NotFound(t *testing.T) {
	repo, err := NewScanResultRepository(t.TempDir())
	if err != nil {
		t.Fatalf("NewScanResultRepository() error = %v", err)
	}

	_, err = repo.FindByTarget(context.Background(), "https://never-scanned.example")
	if !errors.Is(err, sharedErrors.ErrScanResultNotFound) {
		t.Fatalf("expected ErrScanResultNotFound, got %v", err)
	}
}

func TestScanResultRepository_CorruptRecord(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewScanResultRepository(dir)
	if err != nil {
		t.Fatalf("NewScanResultRepository() error = %v", err)
	}

	path, err := repo.Path("https://example.com")
	if err != nil {
		t.Fatalf("Path() error = %v", err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err = repo.FindByTarget(context.Background(), "https://example.com")
	if !errors.Is(err, sharedErrors.ErrDeserializationFailed) {
		t.Fatalf("expected ErrDeserializationFailed, got %v", err)
	}
}

func TestScanResultRepository_Validation(t *testing.T) {
	if _, err := NewScanResultRepository(""); err == nil {
		t.Fatal("expected error for empty results directory")
	}

	repo, err := NewScanResultRepository(t.TempDir())
	if err != nil {
		t.Fatalf("NewScanResultRepository() error = %v", err)
	}
	if _, err := repo.Save(context.Background(), nil); !errors.Is(err, sharedErrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
