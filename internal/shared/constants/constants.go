package constants

import (
	"io/fs"
	"time"
)

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when creating files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// ToolName is the product name shown in banners, prompts and the User-Agent.
	ToolName = "SecuriScan"
	// DefaultResultsDir is where reports, records and the log file are written.
	DefaultResultsDir = "SecuriScan_Results"
	// LogFileName is the scan log inside the results directory.
	LogFileName = "securescan_results.log"
	// TelemetryFileName collects one JSON line per scan when telemetry is enabled.
	TelemetryFileName = "telemetry.jsonl"
)

const (
	// DefaultRetries is the number of HTTP attempts per fetch.
	DefaultRetries = 3
	// DefaultFetchTimeout bounds a single HTTP attempt.
	DefaultFetchTimeout = 5 * time.Second
	// DefaultRetryDelay is the fixed pause between failed attempts.
	DefaultRetryDelay = 2 * time.Second
	// MaxBodyBytes caps how much of a response body is kept for inspection.
	MaxBodyBytes = 5 << 20
)
