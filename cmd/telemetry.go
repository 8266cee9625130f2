package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/securiscan/securiscan-cli/internal/domain/scan"
	consts "github.com/securiscan/securiscan-cli/internal/shared/constants"
)

type telemetryRecord struct {
	Timestamp        time.Time `json:"timestamp"`
	Command          string    `json:"command"`
	Target           string    `json:"target"`
	SectionCount     int       `json:"section_count"`
	FindingCount     int       `json:"finding_count"`
	DegradedSections []string  `json:"degraded_sections"`
	DurationSeconds  float64   `json:"duration_seconds"`
}

func recordTelemetry(appCtx *AppContext, command string, result *scan.Result, duration time.Duration) error {
	record := telemetryRecord{
		Timestamp:        time.Now().UTC(),
		Command:          command,
		Target:           result.Target(),
		SectionCount:     len(scan.Sections),
		FindingCount:     result.TotalFindings(),
		DegradedSections: degradedSections(result),
		DurationSeconds:  duration.Seconds(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal telemetry: %w", err)
	}

	telemetryPath := filepath.Join(appCtx.ResultsDir, consts.TelemetryFileName)
	f, err := os.OpenFile(telemetryPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, consts.DefaultFilePerm)
	if err != nil {
		return fmt.Errorf("open telemetry file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write telemetry: %w", err)
	}

	return nil
}

func degradedSections(result *scan.Result) []string {
	sections := []string{}
	for _, section := range scan.Sections {
		if result.Degraded(section) {
			sections = append(sections, string(section))
		}
	}
	return sections
}
