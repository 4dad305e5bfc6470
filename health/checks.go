package health

import (
	"context"
	"fmt"
	"time"

	"github.com/rklugsederoeaw/kulturpool-mcp-server/cache"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/resilience"
)

// Checker names used by the service.
const (
	NameQuota    = "quota"
	NameUpstream = "upstream"
	NameCache    = "cache"
)

// Quota is the view of a rate limiter the quota checker needs.
type Quota interface {
	Remaining(client string) int
	Config() resilience.RateLimiterConfig
}

// QuotaChecker reports how much of the request quota is left.
type QuotaChecker struct {
	quota Quota
	low   float64
}

// NewQuotaChecker creates a quota checker. The result is degraded once the
// remaining share drops below low (default 0.1) and unhealthy at zero.
func NewQuotaChecker(quota Quota, low float64) *QuotaChecker {
	if low <= 0 || low >= 1 {
		low = 0.1
	}
	return &QuotaChecker{quota: quota, low: low}
}

// Name returns the name of this checker.
func (q *QuotaChecker) Name() string { return NameQuota }

// Check reads the remaining quota of the default client.
func (q *QuotaChecker) Check(_ context.Context) Result {
	cfg := q.quota.Config()
	remaining := q.quota.Remaining(resilience.DefaultClient)
	details := map[string]any{
		"remaining":    remaining,
		"max_requests": cfg.MaxRequests,
		"window":       cfg.Window.String(),
	}

	switch {
	case remaining == 0:
		return Unhealthy("request quota exhausted", ErrQuotaExhausted).WithDetails(details)
	case float64(remaining) < float64(cfg.MaxRequests)*q.low:
		return Degraded(fmt.Sprintf("%d requests left in window", remaining)).WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("%d requests left in window", remaining)).WithDetails(details)
	}
}

// Pinger is implemented by upstream clients that can probe reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// UpstreamChecker probes the upstream API.
type UpstreamChecker struct {
	pinger Pinger
	slow   time.Duration
}

// NewUpstreamChecker creates an upstream checker. Probes slower than slow
// (default 2s) are reported as degraded.
func NewUpstreamChecker(pinger Pinger, slow time.Duration) *UpstreamChecker {
	if slow <= 0 {
		slow = 2 * time.Second
	}
	return &UpstreamChecker{pinger: pinger, slow: slow}
}

// Name returns the name of this checker.
func (u *UpstreamChecker) Name() string { return NameUpstream }

// Check pings the upstream once.
func (u *UpstreamChecker) Check(ctx context.Context) Result {
	start := time.Now()
	err := u.pinger.Ping(ctx)
	latency := time.Since(start)
	details := map[string]any{"latency_ms": latency.Milliseconds()}

	switch {
	case err != nil:
		return Unhealthy("upstream unreachable", fmt.Errorf("%w: %w", ErrCheckFailed, err)).WithDetails(details)
	case latency > u.slow:
		return Degraded("upstream responding slowly").WithDetails(details)
	default:
		return Healthy("upstream reachable").WithDetails(details)
	}
}

// StatsSource exposes cache counters.
type StatsSource interface {
	Stats() cache.Stats
}

// CacheChecker reports cache occupancy and hit ratio. It never fails; the
// service can always fall through to the upstream.
type CacheChecker struct {
	source StatsSource
}

// NewCacheChecker creates a cache checker.
func NewCacheChecker(source StatsSource) *CacheChecker {
	return &CacheChecker{source: source}
}

// Name returns the name of this checker.
func (c *CacheChecker) Name() string { return NameCache }

// Check snapshots the cache counters.
func (c *CacheChecker) Check(_ context.Context) Result {
	s := c.source.Stats()
	ratio := 0.0
	if lookups := s.Hits + s.Misses; lookups > 0 {
		ratio = float64(s.Hits) / float64(lookups)
	}
	return Healthy(fmt.Sprintf("%d entries cached", s.Entries)).WithDetails(map[string]any{
		"entries":     s.Entries,
		"hits":        s.Hits,
		"misses":      s.Misses,
		"evictions":   s.Evictions,
		"expirations": s.Expirations,
		"hit_ratio":   ratio,
	})
}

var (
	_ Checker     = (*QuotaChecker)(nil)
	_ Checker     = (*UpstreamChecker)(nil)
	_ Checker     = (*CacheChecker)(nil)
	_ Quota       = (*resilience.RateLimiter)(nil)
	_ StatsSource = (*cache.LRUCache)(nil)
)
