package checker

import (
	"fmt"
	"net/url"
	"strings"

	valid "github.com/asaskevich/govalidator"

	sharedErrors "github.com/securiscan/securiscan-cli/internal/shared/errors"
)

// Target is a validated, normalized scan target
type Target struct {
	Raw     string // Original input
	URL     string // Normalized URL used for the page fetch
	Scheme  string // http or https
	Host    string // Hostname without port
	Port    string // Port if specified
	Path    string // Path if specified
	IsLocal bool   // Host is localhost or 127.0.0.1
}

var localHosts = map[string]struct{}{
	"localhost": {},
	"127.0.0.1": {},
}

// ParseTarget validates a raw target string. It handles:
//   - example.com
//   - http://example.com
//   - https://example.com:443/path
//   - localhost:8080
//
// Inputs without a scheme default to http. Anything that is not an http(s)
// URL with a host is rejected with ErrInvalidTarget.
func ParseTarget(raw string) (*Target, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, sharedErrors.ErrEmptyTarget
	}

	candidate := trimmed
	if !strings.Contains(candidate, "://") {
		candidate = "http://" + candidate
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", sharedErrors.ErrInvalidTarget, raw, err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("%w: %q: unsupported scheme %q", sharedErrors.ErrInvalidTarget, raw, parsed.Scheme)
	}
	parsed.Scheme = scheme

	if parsed.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q: missing host", sharedErrors.ErrInvalidTarget, raw)
	}

	parsed.Fragment = ""
	parsed.RawFragment = ""
	normalized := parsed.String()

	if !valid.IsURL(normalized) {
		return nil, fmt.Errorf("%w: %q", sharedErrors.ErrInvalidTarget, raw)
	}

	host := strings.ToLower(parsed.Hostname())
	_, local := localHosts[host]

	return &Target{
		Raw:     raw,
		URL:     normalized,
		Scheme:  scheme,
		Host:    host,
		Port:    parsed.Port(),
		Path:    parsed.Path,
		IsLocal: local,
	}, nil
}

// JoinPath appends a sub-path to the target's scheme, host and path,
// dropping any query string and duplicate slashes.
func (t *Target) JoinPath(path string) string {
	base := t.Scheme + "://" + hostPort(t.Host, t.Port) + strings.TrimRight(t.Path, "/")
	return base + "/" + strings.TrimLeft(path, "/")
}

func hostPort(host, port string) string {
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port == "" {
		return host
	}
	return host + ":" + port
}

func (t *Target) String() string {
	return t.URL
}
