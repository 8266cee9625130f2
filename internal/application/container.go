package application

import (
	"fmt"

	"go.uber.org/zap"

	scanapp "github.com/securiscan/securiscan-cli/internal/application/scan"
	"github.com/securiscan/securiscan-cli/internal/checker"
	"github.com/securiscan/securiscan-cli/internal/domain/scan"
	"github.com/securiscan/securiscan-cli/internal/fetcher"
	"github.com/securiscan/securiscan-cli/internal/infrastructure/persistence/json"
)

// Config is everything the container needs to wire a scan
type Config struct {
	ResultsDir string
	Fetch      fetcher.Options
	Libraries  []checker.VulnerableLibrary
}

// Container holds all application services and repositories
// This is a simple dependency injection container
type Container struct {
	// Repositories
	ResultRepo scan.Repository

	// Services
	Fetcher          *fetcher.Fetcher
	Probes           []checker.Probe
	ScanOrchestrator *scanapp.Orchestrator
}

// NewContainer creates a new application service container
func NewContainer(cfg Config, logger *zap.SugaredLogger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	// Initialize repositories
	resultRepo, err := json.NewScanResultRepository(cfg.ResultsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan result repository: %w", err)
	}

	// Initialize services
	opts := cfg.Fetch
	if opts.Logger == nil {
		opts.Logger = logger
	}
	f := fetcher.New(opts)
	probes := checker.DefaultProbes(f, cfg.Libraries)

	return &Container{
		ResultRepo:       resultRepo,
		Fetcher:          f,
		Probes:           probes,
		ScanOrchestrator: scanapp.NewOrchestrator(probes, logger),
	}, nil
}
