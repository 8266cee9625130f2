// Package constants centralizes shared defaults (file permissions, fetch
// budget, results layout) to avoid magic numbers across the CLI and core.
package constants
