package json

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/securiscan/securiscan-cli/internal/domain/scan"
	consts "github.com/securiscan/securiscan-cli/internal/shared/constants"
	sharedErrors "github.com/securiscan/securiscan-cli/internal/shared/errors"
	"github.com/securiscan/securiscan-cli/internal/shared/security"
)

// scanResultDTO is the data transfer object for JSON serialization
type scanResultDTO struct {
	Tool          string       `json:"tool"`
	Target        string       `json:"target"`
	StartedAt     string       `json:"started_at"`
	CompletedAt   string       `json:"completed_at"`
	DurationMS    int64        `json:"duration_ms"`
	TotalFindings int          `json:"total_findings"`
	Sections      []sectionDTO `json:"sections"`
}

type sectionDTO struct {
	Category string       `json:"category"`
	Title    string       `json:"title"`
	Findings []findingDTO `json:"findings"`
}

type findingDTO struct {
	Category string `json:"category"`
	Probe    string `json:"probe"`
	Message  string `json:"message"`
}

// ScanResultRepository implements the scan.Repository interface using one
// JSON file per target in the results directory
type ScanResultRepository struct {
	resultsDir string
	mu         sync.RWMutex
}

// NewScanResultRepository creates a new JSON-based scan result repository
func NewScanResultRepository(resultsDir string) (*ScanResultRepository, error) {
	if resultsDir == "" {
		return nil, fmt.Errorf("results directory cannot be empty")
	}

	if err := os.MkdirAll(resultsDir, consts.DefaultDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	return &ScanResultRepository{
		resultsDir: resultsDir,
	}, nil
}

// Path returns the file a result for target is stored in
func (r *ScanResultRepository) Path(target string) (string, error) {
	return security.ResolveWithin(r.resultsDir, security.ResultFileStem(target)+"_scan.json")
}

// Save writes the result, replacing any earlier record for the same target,
// and returns the file path
func (r *ScanResultRepository) Save(ctx context.Context, result *scan.Result) (string, error) {
	if result == nil {
		return "", fmt.Errorf("%w: nil scan result", sharedErrors.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	filePath, err := r.Path(result.Target())
	if err != nil {
		return "", fmt.Errorf("%w: %v", sharedErrors.ErrRepositoryOperation, err)
	}

	data, err := MarshalResult(result)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(filePath, data, consts.DefaultFilePerm); err != nil {
		return "", fmt.Errorf("failed to save scan result: %w", err)
	}

	return filePath, nil
}

// FindByTarget loads the last saved result for target
func (r *ScanResultRepository) FindByTarget(ctx context.Context, target string) (*scan.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	filePath, err := r.Path(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sharedErrors.ErrRepositoryOperation, err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", sharedErrors.ErrScanResultNotFound, target)
		}
		return nil, fmt.Errorf("failed to read scan result: %w", err)
	}

	var dto scanResultDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("%w: %v", sharedErrors.ErrDeserializationFailed, err)
	}

	return fromDTO(dto)
}

// MarshalResult encodes a result in the on-disk record format
func MarshalResult(result *scan.Result) ([]byte, error) {
	data, err := json.MarshalIndent(toDTO(result), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sharedErrors.ErrSerializationFailed, err)
	}
	return data, nil
}

func toDTO(result *scan.Result) scanResultDTO {
	dto := scanResultDTO{
		Tool:          consts.ToolName,
		Target:        result.Target(),
		StartedAt:     result.StartedAt().Format(time.RFC3339Nano),
		CompletedAt:   result.CompletedAt().Format(time.RFC3339Nano),
		DurationMS:    result.Duration().Milliseconds(),
		TotalFindings: result.TotalFindings(),
		Sections:      make([]sectionDTO, 0, len(scan.Sections)),
	}

	for _, section := range scan.Sections {
		s := sectionDTO{
			Category: string(section),
			Title:    section.Title(),
			Findings: make([]findingDTO, 0),
		}
		for _, f := range result.Findings(section) {
			s.Findings = append(s.Findings, findingDTO{
				Category: string(f.Category),
				Probe:    f.Probe,
				Message:  f.Message,
			})
		}
		dto.Sections = append(dto.Sections, s)
	}

	return dto
}

func fromDTO(dto scanResultDTO) (*scan.Result, error) {
	startedAt, err := time.Parse(time.RFC3339Nano, dto.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse started at time: %w", err)
	}

	completedAt, err := time.Parse(time.RFC3339Nano, dto.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse completed at time: %w", err)
	}

	sections := make(map[scan.Category][]scan.Finding, len(dto.Sections))
	for _, s := range dto.Sections {
		section, err := scan.ParseCategory(s.Category)
		if err != nil {
			return nil, err
		}
		for _, f := range s.Findings {
			category, err := scan.ParseCategory(f.Category)
			if err != nil {
				return nil, err
			}
			sections[section] = append(sections[section], scan.NewFinding(category, f.Probe, f.Message))
		}
	}

	return scan.Assemble(dto.Target, startedAt, completedAt, sections)
}
