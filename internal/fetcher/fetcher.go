// Package fetcher implements the retrying, timeout-bounded HTTP GET shared by
// every probe. Transport faults are retried and finally reported as data in a
// Result; an HTTP response of any status is a success and never retried.
package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	consts "github.com/securiscan/securiscan-cli/internal/shared/constants"
	sharedErrors "github.com/securiscan/securiscan-cli/internal/shared/errors"
)

// Result is the immutable outcome of one Fetch call
type Result struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       string
	Attempts   int
	Err        error
}

// OK reports whether an HTTP response was received
func (r Result) OK() bool {
	return r.Err == nil
}

// Options configures a Fetcher. Non-positive Retries and Timeout fall back to
// the defaults in internal/shared/constants; a zero RetryDelay retries at once.
type Options struct {
	Retries    int
	Timeout    time.Duration
	RetryDelay time.Duration
	RateLimit  int // requests per second across all fetches, 0 = unlimited
	UserAgent  string
	Client     *http.Client
	Logger     *zap.SugaredLogger
}

// Fetcher performs bounded HTTP GETs with retry and a fixed backoff
type Fetcher struct {
	client     *http.Client
	retries    int
	timeout    time.Duration
	retryDelay time.Duration
	userAgent  string
	limiter    *rate.Limiter
	logger     *zap.SugaredLogger
	sleep      func(ctx context.Context, d time.Duration) error
}

// DefaultOptions returns the stock retry budget: 3 attempts, 5s each, 2s apart
func DefaultOptions() Options {
	return Options{
		Retries:    consts.DefaultRetries,
		Timeout:    consts.DefaultFetchTimeout,
		RetryDelay: consts.DefaultRetryDelay,
	}
}

// New creates a Fetcher from the provided options
func New(opts Options) *Fetcher {
	retries := opts.Retries
	if retries <= 0 {
		retries = consts.DefaultRetries
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = consts.DefaultFetchTimeout
	}
	retryDelay := opts.RetryDelay
	if retryDelay < 0 {
		retryDelay = 0
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateLimit)
	}

	client := opts.Client
	if client == nil {
		client = newClient()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = consts.ToolName + "/dev"
	}

	return &Fetcher{
		client:     client,
		retries:    retries,
		timeout:    timeout,
		retryDelay: retryDelay,
		userAgent:  ua,
		limiter:    limiter,
		logger:     logger,
		sleep:      sleepContext,
	}
}

// newClient returns a client that opens a fresh connection per request
func newClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			TLSClientConfig:   &tls.Config{MinVersion: tls.VersionTLS12},
			DisableKeepAlives: true,
		},
	}
}

// Retries returns the number of attempts made per Fetch
func (f *Fetcher) Retries() int {
	return f.retries
}

// WorstCase returns the longest a single Fetch can take
func (f *Fetcher) WorstCase() time.Duration {
	return time.Duration(f.retries) * (f.timeout + f.retryDelay)
}

// Fetch performs up to Retries GET attempts against url and never panics
// or returns an error outside the Result.
func (f *Fetcher) Fetch(ctx context.Context, url string) Result {
	var lastErr error
	attempts := 0

	for attempt := 1; attempt <= f.retries; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			lastErr = err
			break
		}

		attempts++
		res, err := f.attempt(ctx, url)
		if err == nil {
			res.Attempts = attempts
			return res
		}

		lastErr = err
		f.logger.Errorw("Error fetching URL - retrying",
			"url", url,
			"attempt", attempt,
			"retries", f.retries,
			"error", err.Error(),
		)

		if ctx.Err() != nil {
			break
		}
		if attempt < f.retries {
			if err := f.sleep(ctx, f.retryDelay); err != nil {
				lastErr = err
				break
			}
		}
	}

	f.logger.Errorf("Failed to fetch %s after %d retries", url, f.retries)

	return Result{
		URL:      url,
		Attempts: attempts,
		Err:      fmt.Errorf("%w: %s: %w", sharedErrors.ErrFetchFailed, url, lastErr),
	}
}

func (f *Fetcher) attempt(ctx context.Context, url string) (Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, &TransportError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return Result{}, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, consts.MaxBodyBytes))
	if err != nil {
		return Result{}, &TransportError{URL: url, Err: fmt.Errorf("reading response body: %w", err)}
	}

	return Result{
		URL:        url,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       string(body),
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
