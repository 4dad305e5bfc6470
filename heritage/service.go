package heritage

import (
	"context"
	"fmt"
	"time"

	"github.com/rklugsederoeaw/kulturpool-mcp-server/cache"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/health"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/kulturpool"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/observe"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/resilience"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/search"
)

// Endpoint cache lifetimes.
const (
	SearchTTL             = 5 * time.Minute
	ObjectTTL             = time.Hour
	InstitutionsTTL       = time.Hour
	InstitutionDetailsTTL = time.Hour
	AssetTTL              = 30 * time.Minute
)

// Operation names.
const (
	OpExplore            = "explore"
	OpSearchFiltered     = "search_filtered"
	OpGetDetails         = "get_details"
	OpInstitutions       = "get_institutions"
	OpInstitutionDetails = "get_institution_details"
	OpAsset              = "get_asset"
)

// DefaultPolicy caches every endpoint with its lifetime above.
func DefaultPolicy() cache.Policy {
	return cache.Policy{
		DefaultTTL: SearchTTL,
		MaxTTL:     24 * time.Hour,
		EndpointTTL: map[string]time.Duration{
			kulturpool.EndpointSearch:             SearchTTL,
			kulturpool.EndpointObject:             ObjectTTL,
			kulturpool.EndpointInstitutions:       InstitutionsTTL,
			kulturpool.EndpointInstitutionDetails: InstitutionDetailsTTL,
			kulturpool.EndpointAssets:             AssetTTL,
		},
	}
}

// Config configures a Service.
type Config struct {
	// RateLimit bounds upstream requests across all operations.
	// Default: 100 per hour
	RateLimit resilience.RateLimiterConfig

	// CacheEntries is the response cache capacity. Zero disables caching.
	// Default: 1000 (when negative)
	CacheEntries int

	// CleanupInterval is how often Run purges expired cache entries.
	// Default: 1 minute
	CleanupInterval time.Duration

	// Policy sets the per-endpoint cache lifetimes.
	// Default: DefaultPolicy()
	Policy *cache.Policy

	// DetailConcurrency bounds parallel lookups in GetDetails.
	// Default: 3
	DetailConcurrency int

	// Coalesce collapses concurrent identical upstream misses.
	Coalesce bool

	// QuotaLowWater is the remaining quota share reported as degraded.
	// Default: 0.1
	QuotaLowWater float64

	// SlowUpstream is the probe latency reported as degraded.
	// Default: 2 seconds
	SlowUpstream time.Duration
}

// DefaultConfig returns the service defaults.
func DefaultConfig() Config {
	return Config{
		RateLimit:         resilience.RateLimiterConfig{MaxRequests: 100, Window: time.Hour},
		CacheEntries:      1000,
		CleanupInterval:   time.Minute,
		DetailConcurrency: 3,
		QuotaLowWater:     0.1,
		SlowUpstream:      2 * time.Second,
	}
}

// Option configures a Service.
type Option func(*Service)

// WithMiddleware sets the observability middleware shared by the service
// and its facade.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(s *Service) { s.mw = mw }
}

// WithPinger sets the upstream probe used by Health. By default the upstream
// is used when it implements health.Pinger.
func WithPinger(p health.Pinger) Option {
	return func(s *Service) { s.pinger = p }
}

// Service implements the heritage query operations over one upstream.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Quota: every upstream request, cached or not, is admitted by the
//     shared rate limiter first.
type Service struct {
	config  Config
	facade  *search.Facade
	lru     *cache.LRUCache
	mw      *observe.Middleware
	pinger  health.Pinger
	checks  *health.Aggregator
	detailN int
}

// New wires the limiter, cache and facade for upstream.
func New(cfg Config, upstream search.Upstream, opts ...Option) (*Service, error) {
	if upstream == nil {
		return nil, ErrNilUpstream
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}
	if cfg.DetailConcurrency <= 0 {
		cfg.DetailConcurrency = 3
	}
	policy := DefaultPolicy()
	if cfg.Policy != nil {
		policy = *cfg.Policy
	}

	s := &Service{config: cfg, detailN: cfg.DetailConcurrency}
	for _, opt := range opts {
		opt(s)
	}
	if s.mw == nil {
		s.mw = observe.NewMiddleware(nil, nil, nil)
	}
	if s.pinger == nil {
		if p, ok := upstream.(health.Pinger); ok {
			s.pinger = p
		}
	}

	limiter := resilience.NewRateLimiter(cfg.RateLimit)
	s.lru = cache.NewLRUCache(cache.LRUConfig{MaxEntries: cfg.CacheEntries})
	rc, err := cache.NewResponseCache(s.lru, nil)
	if err != nil {
		return nil, fmt.Errorf("heritage: response cache: %w", err)
	}

	facadeOpts := []search.Option{
		search.WithPolicy(policy),
		search.WithLogger(s.mw.Logger()),
		search.WithMetrics(s.mw.Metrics()),
		search.WithTracer(s.mw.Tracer()),
	}
	if cfg.Coalesce {
		facadeOpts = append(facadeOpts, search.WithCoalescing())
	}
	s.facade, err = search.NewFacade(limiter, rc, upstream, facadeOpts...)
	if err != nil {
		return nil, fmt.Errorf("heritage: facade: %w", err)
	}

	s.checks = health.NewAggregator()
	s.checks.Register(
		health.NewQuotaChecker(limiter, cfg.QuotaLowWater),
		health.NewCacheChecker(s.lru),
	)
	if s.pinger != nil {
		s.checks.Register(health.NewUpstreamChecker(s.pinger, cfg.SlowUpstream))
	}
	return s, nil
}

// Run purges expired cache entries and idle limiter clients every
// CleanupInterval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	log := s.mw.Logger()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired := s.lru.PurgeExpired()
			idle := s.facade.Limiter().PruneIdle()
			if expired > 0 || idle > 0 {
				log.Debug(ctx, "cleanup",
					observe.Field{Key: "expired_entries", Value: expired},
					observe.Field{Key: "idle_clients", Value: idle})
			}
		}
	}
}

// Health reports quota, cache and upstream health. The upstream probe does
// not consume quota.
func (s *Service) Health(ctx context.Context) health.Report {
	return s.checks.Report(ctx)
}

// Facade returns the request facade.
func (s *Service) Facade() *search.Facade { return s.facade }

// CacheStats returns the response cache counters.
func (s *Service) CacheStats() cache.Stats { return s.lru.Stats() }

// observed runs fn as the named operation under a request id shared by
// every upstream request it makes.
func (s *Service) observed(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, _ = observe.EnsureRequestID(ctx)
	op := observe.Operation{Name: name}
	return s.mw.Run(ctx, op, func(ctx context.Context, _ observe.Operation) error {
		return fn(ctx)
	})
}

// execute sends one request through the facade.
func (s *Service) execute(ctx context.Context, endpoint string, values map[string]any) (search.Result, error) {
	return s.facade.Execute(ctx, endpoint, values)
}
