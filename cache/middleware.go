package cache

import (
	"context"
	"fmt"
	"time"
)

// StoreError reports that a fetched response could not be cached. It is
// non-fatal: Fetch returns the response alongside it.
type StoreError struct {
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("cache: store %s: %v", e.Key, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StoreError) Unwrap() error { return e.Err }

// FetchFunc retrieves a response from the upstream on a cache miss.
type FetchFunc func(ctx context.Context, endpoint string, params map[string]any) ([]byte, error)

// Fetch is a read-through lookup.
// On hit, returns the cached response without calling fetch.
// On miss, calls fetch and caches the result for ttl.
// Errors are NOT cached. The returned bool reports a cache hit.
// If storing fails, the response is returned with a *StoreError.
func (r *ResponseCache) Fetch(
	ctx context.Context,
	endpoint string,
	params map[string]any,
	ttl time.Duration,
	fetch FetchFunc,
) ([]byte, bool, error) {
	key, err := r.keyer.Key(endpoint, params)
	if err != nil {
		// Key generation failed - fetch without caching
		result, err := fetch(ctx, endpoint, params)
		return result, false, err
	}

	if cached, ok := r.cache.Get(ctx, key); ok {
		return cached, true, nil
	}

	result, err := fetch(ctx, endpoint, params)
	if err != nil {
		return result, false, err
	}

	if ttl > 0 {
		if err := r.cache.Set(ctx, key, result, ttl); err != nil {
			return result, false, &StoreError{Key: key, Err: err}
		}
	}

	return result, false, nil
}
