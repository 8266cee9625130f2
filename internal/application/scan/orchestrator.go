package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"github.com/securiscan/securiscan-cli/internal/checker"
	"github.com/securiscan/securiscan-cli/internal/domain/scan"
)

// ProbeReport describes one finished probe
type ProbeReport struct {
	Name     string
	Findings int
	Degraded bool // the probe reported an informational sentinel
	Duration time.Duration
}

// ProbeObserver is called as each probe finishes. Calls may be concurrent.
type ProbeObserver func(ProbeReport)

// Orchestrator runs every probe against a target and assembles the result
type Orchestrator struct {
	probes   []checker.Probe
	logger   *zap.SugaredLogger
	observer ProbeObserver
	now      func() time.Time
}

// NewOrchestrator creates a new scan orchestrator
func NewOrchestrator(probes []checker.Probe, logger *zap.SugaredLogger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Orchestrator{
		probes: probes,
		logger: logger,
		now:    time.Now,
	}
}

// WithObserver returns a copy of the orchestrator that reports probe completion to fn
func (o *Orchestrator) WithObserver(fn ProbeObserver) *Orchestrator {
	clone := *o
	clone.observer = fn
	return &clone
}

// Probes returns the configured probe names in dispatch order
func (o *Orchestrator) Probes() []string {
	names := make([]string, 0, len(o.probes))
	for _, p := range o.probes {
		names = append(names, p.Name())
	}
	return names
}

// Scan validates rawURL, runs all probes concurrently and waits for every one
// of them. Probe failures never abort the scan; they show up as
// informational findings in the probe's section.
func (o *Orchestrator) Scan(ctx context.Context, rawURL string) (*scan.Result, error) {
	target, err := checker.ParseTarget(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse target: %w", err)
	}

	o.logger.Infof("Scanning %s with SecuriScan...", target.URL)
	startedAt := o.now()

	// one slot per probe; each goroutine writes only its own
	slots := make([][]scan.Finding, len(o.probes))
	var observerMu sync.Mutex

	var wg conc.WaitGroup
	for i, probe := range o.probes {
		wg.Go(func() {
			began := time.Now()
			slots[i] = o.runProbe(ctx, probe, target)

			report := ProbeReport{
				Name:     probe.Name(),
				Findings: len(slots[i]),
				Degraded: degraded(slots[i]),
				Duration: time.Since(began),
			}
			o.logger.Debugw("Probe finished",
				"probe", report.Name,
				"findings", report.Findings,
				"degraded", report.Degraded,
				"duration", report.Duration,
			)
			if o.observer != nil {
				observerMu.Lock()
				o.observer(report)
				observerMu.Unlock()
			}
		})
	}
	wg.Wait()

	sections := make(map[scan.Category][]scan.Finding, len(scan.Sections))
	for i, probe := range o.probes {
		section := probe.Section()
		sections[section] = append(sections[section], slots[i]...)
	}

	result, err := scan.Assemble(target.URL, startedAt, o.now(), sections)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble scan result: %w", err)
	}

	o.logger.Infow("Scan completed",
		"target", target.URL,
		"findings", result.TotalFindings(),
		"duration", result.Duration(),
	)

	return result, nil
}

func (o *Orchestrator) runProbe(ctx context.Context, probe checker.Probe, target *checker.Target) []scan.Finding {
	var findings []scan.Finding

	var pc panics.Catcher
	pc.Try(func() {
		findings = probe.Check(ctx, target)
	})

	if r := pc.Recovered(); r != nil {
		o.logger.Errorw("Probe aborted",
			"probe", probe.Name(),
			"panic", r.Value,
		)
		return []scan.Finding{scan.Informational(probe.Name(), fmt.Sprintf("Probe %s aborted: %v", probe.Name(), r.Value))}
	}

	return findings
}

func degraded(findings []scan.Finding) bool {
	for _, f := range findings {
		if f.IsInformational() {
			return true
		}
	}
	return false
}
