package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/securiscan/securiscan-cli/internal/shared/security"
)

// resolveReportPath names the per-target report file <stem>_scan.<ext> inside
// resultsDir. The extension is stored inside the filename, so reject separators.
func resolveReportPath(resultsDir, target, ext string) (string, error) {
	if strings.TrimSpace(target) == "" {
		return "", errors.New("target is required")
	}
	switch ext {
	case "", ".", "..":
		return "", fmt.Errorf("report extension %q is invalid", ext)
	}
	if strings.ContainsAny(ext, "/\\") {
		return "", fmt.Errorf("report extension %q must not contain path separators", ext)
	}
	path, err := security.ResolveWithin(resultsDir, security.ResultFileStem(target)+"_scan."+ext)
	if err != nil {
		return "", fmt.Errorf("resolve report path: %w", err)
	}
	return path, nil
}
