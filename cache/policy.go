package cache

import "time"

// Policy configures how long responses are cached per endpoint.
type Policy struct {
	// DefaultTTL is used for endpoints without an EndpointTTL entry.
	// If zero, such endpoints are not cached.
	DefaultTTL time.Duration

	// MaxTTL is the maximum allowed TTL. Longer TTLs are clamped to this.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration

	// EndpointTTL overrides DefaultTTL per endpoint key. A zero value
	// disables caching for that endpoint.
	EndpointTTL map[string]time.Duration
}

// DefaultPolicy returns the default caching policy.
// DefaultTTL: 5 minutes, MaxTTL: 24 hours, no endpoint overrides.
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL: 5 * time.Minute,
		MaxTTL:     24 * time.Hour,
	}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{}
}

// WithEndpointTTL returns a copy of p with ttl configured for endpoint.
func (p Policy) WithEndpointTTL(endpoint string, ttl time.Duration) Policy {
	overrides := make(map[string]time.Duration, len(p.EndpointTTL)+1)
	for k, v := range p.EndpointTTL {
		overrides[k] = v
	}
	overrides[endpoint] = ttl
	p.EndpointTTL = overrides
	return p
}

// ShouldCache returns true if responses for endpoint are cached.
func (p Policy) ShouldCache(endpoint string) bool {
	return p.TTLFor(endpoint) > 0
}

// TTLFor returns the TTL for endpoint, applying overrides and clamping.
func (p Policy) TTLFor(endpoint string) time.Duration {
	ttl, ok := p.EndpointTTL[endpoint]
	if !ok {
		ttl = p.DefaultTTL
	}
	return p.EffectiveTTL(ttl)
}

// EffectiveTTL clamps ttl to MaxTTL. Non-positive values return 0.
func (p Policy) EffectiveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}

	// Clamp to MaxTTL if set
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}

	return ttl
}
