package fetcher

import "fmt"

// TransportError wraps a network-level failure of a single attempt:
// timeouts, DNS, refused connections, TLS errors and truncated bodies.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
