package cache

import (
	"context"
	"time"
)

// ResponseCache stores upstream responses by (endpoint, params) fingerprint.
type ResponseCache struct {
	cache Cache
	keyer Keyer
}

// NewResponseCache creates a response cache over store.
// If keyer is nil, DefaultKeyer is used.
func NewResponseCache(store Cache, keyer Keyer) (*ResponseCache, error) {
	if store == nil {
		return nil, ErrNilCache
	}
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	return &ResponseCache{cache: store, keyer: keyer}, nil
}

// Get returns a copy of the cached response for endpoint and params.
// Returns (nil, false) on miss, expiry, or an unfingerprintable request.
func (r *ResponseCache) Get(ctx context.Context, endpoint string, params map[string]any) ([]byte, bool) {
	key, err := r.keyer.Key(endpoint, params)
	if err != nil {
		return nil, false
	}
	return r.cache.Get(ctx, key)
}

// Set stores value for endpoint and params. TTL<=0 stores nothing.
func (r *ResponseCache) Set(ctx context.Context, endpoint string, params map[string]any, value []byte, ttl time.Duration) error {
	key, err := r.keyer.Key(endpoint, params)
	if err != nil {
		return err
	}
	return r.cache.Set(ctx, key, value, ttl)
}

// Invalidate removes the response for endpoint and params.
func (r *ResponseCache) Invalidate(ctx context.Context, endpoint string, params map[string]any) error {
	key, err := r.keyer.Key(endpoint, params)
	if err != nil {
		return err
	}
	return r.cache.Delete(ctx, key)
}

// Key returns the cache key for endpoint and params.
func (r *ResponseCache) Key(endpoint string, params map[string]any) (string, error) {
	return r.keyer.Key(endpoint, params)
}

// Store returns the underlying key-level cache.
func (r *ResponseCache) Store() Cache {
	return r.cache
}
