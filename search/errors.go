package search

import (
	"errors"
	"fmt"

	"github.com/rklugsederoeaw/kulturpool-mcp-server/resilience"
)

var (
	// ErrQuotaExceeded is returned when the rate limiter rejects a request.
	ErrQuotaExceeded = fmt.Errorf("search: quota exceeded: %w", resilience.ErrRateLimitExceeded)

	// ErrUpstream matches every *UpstreamError.
	ErrUpstream = errors.New("search: upstream failure")

	// ErrNilLimiter indicates a facade was built without a rate limiter.
	ErrNilLimiter = errors.New("search: nil rate limiter")

	// ErrNilCache indicates a facade was built without a response cache.
	ErrNilCache = errors.New("search: nil response cache")

	// ErrNilUpstream indicates a facade was built without an upstream.
	ErrNilUpstream = errors.New("search: nil upstream")
)

// UpstreamError reports a failed upstream fetch.
type UpstreamError struct {
	Endpoint string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("search: upstream %s: %v", e.Endpoint, e.Err)
}

// Unwrap returns the underlying cause.
func (e *UpstreamError) Unwrap() error { return e.Err }

// Is reports whether target is ErrUpstream.
func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }
