package scan

import "context"

// Repository defines the interface for scan result persistence
type Repository interface {
	// Save persists the latest result for its target
	Save(ctx context.Context, result *Result) (string, error)

	// FindByTarget retrieves the latest saved result for a target URL
	FindByTarget(ctx context.Context, target string) (*Result, error)
}
