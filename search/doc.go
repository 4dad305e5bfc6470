// Package search admits, caches and forwards upstream requests.
//
// A Facade is the single path by which the service reaches the upstream API.
// Each Execute call runs through the same states:
//
//	REJECTED  the rate limiter denies the request; no cache or network access
//	HIT       the response cache holds a live entry; it is returned unchanged
//	MISS      the upstream is called, the body is stored for the endpoint TTL
//	          and returned
//
// The caller's params are never mutated. The facade holds no lock while the
// upstream call is in flight, so concurrent identical misses may both fetch
// unless coalescing is enabled with WithCoalescing.
//
// Failures are reported as ErrQuotaExceeded or as an *UpstreamError matching
// ErrUpstream. Failed fetches are never cached.
package search
