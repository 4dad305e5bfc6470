package search

import (
	"bytes"
	"context"
	"errors"

	"golang.org/x/sync/singleflight"

	"github.com/rklugsederoeaw/kulturpool-mcp-server/cache"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/observe"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/resilience"
)

// OperationName is the observe operation name of an upstream request.
const OperationName = "upstream"

// Upstream fetches a raw response for an endpoint key.
//
// Contract:
//   - Params: implementations receive a private copy and may modify it.
//   - Errors: a non-nil error means no body; the facade caches nothing.
//   - Context: implementations honor cancellation and deadlines.
type Upstream interface {
	Fetch(ctx context.Context, endpoint string, params map[string]any) ([]byte, error)
}

// UpstreamFunc adapts a function to Upstream.
type UpstreamFunc func(ctx context.Context, endpoint string, params map[string]any) ([]byte, error)

// Fetch calls f.
func (f UpstreamFunc) Fetch(ctx context.Context, endpoint string, params map[string]any) ([]byte, error) {
	return f(ctx, endpoint, params)
}

// Result is the outcome of an admitted request.
type Result struct {
	// Body is the raw upstream response.
	Body []byte

	// CacheHit reports that Body came from the response cache.
	CacheHit bool
}

// Option configures a Facade.
type Option func(*Facade)

// WithPolicy sets the per-endpoint caching policy.
// Default: cache.DefaultPolicy()
func WithPolicy(p cache.Policy) Option {
	return func(f *Facade) { f.policy = p }
}

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(f *Facade) { f.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observe.Metrics) Option {
	return func(f *Facade) { f.metrics = m }
}

// WithTracer sets the tracer.
func WithTracer(t observe.Tracer) Option {
	return func(f *Facade) { f.tracer = t }
}

// WithCoalescing collapses concurrent misses for the same cache key into a
// single upstream call. Every caller is still admitted by the rate limiter.
func WithCoalescing() Option {
	return func(f *Facade) { f.group = &singleflight.Group{} }
}

// Facade orchestrates rate limiting, response caching and upstream fetches.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Params: the caller's map is never mutated.
//   - Locks: neither the limiter nor the cache is held during a fetch.
type Facade struct {
	limiter  *resilience.RateLimiter
	cache    *cache.ResponseCache
	upstream Upstream
	policy   cache.Policy

	logger  observe.Logger
	metrics observe.Metrics
	tracer  observe.Tracer
	mw      *observe.Middleware
	group   *singleflight.Group
}

// NewFacade creates a facade over the given limiter, cache and upstream.
func NewFacade(limiter *resilience.RateLimiter, rc *cache.ResponseCache, upstream Upstream, opts ...Option) (*Facade, error) {
	if limiter == nil {
		return nil, ErrNilLimiter
	}
	if rc == nil {
		return nil, ErrNilCache
	}
	if upstream == nil {
		return nil, ErrNilUpstream
	}

	f := &Facade{
		limiter:  limiter,
		cache:    rc,
		upstream: upstream,
		policy:   cache.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(f)
	}

	f.mw = observe.NewMiddleware(f.tracer, f.metrics, f.logger)
	f.logger = f.mw.Logger()
	f.metrics = f.mw.Metrics()
	return f, nil
}

// Execute admits, looks up, and if needed fetches and stores the response
// for endpoint and params.
func (f *Facade) Execute(ctx context.Context, endpoint string, params map[string]any) (Result, error) {
	var res Result
	op := observe.Operation{Name: OperationName, Endpoint: endpoint}
	err := f.mw.Run(ctx, op, func(ctx context.Context, op observe.Operation) error {
		var err error
		res, err = f.execute(ctx, op, params)
		return err
	})
	return res, err
}

func (f *Facade) execute(ctx context.Context, op observe.Operation, params map[string]any) (Result, error) {
	log := f.logger.WithOperation(op)
	call := cloneParams(params)

	if !f.limiter.Allow() {
		f.metrics.RecordRejection(ctx, op)
		log.Warn(ctx, "rate limit exceeded",
			observe.Field{Key: "window", Value: f.limiter.Config().Window.String()})
		return Result{}, ErrQuotaExceeded
	}

	body, hit, err := f.cache.Fetch(ctx, op.Endpoint, call, f.policy.TTLFor(op.Endpoint), f.fetch)
	f.metrics.RecordCacheLookup(ctx, op, hit)
	if hit {
		log.Debug(ctx, "cache hit")
		return Result{Body: body, CacheHit: true}, nil
	}
	log.Debug(ctx, "cache miss")

	var storeErr *cache.StoreError
	if errors.As(err, &storeErr) {
		log.Warn(ctx, "cache store failed", observe.Field{Key: "error", Value: storeErr.Err.Error()})
		err = nil
	}
	if err != nil {
		log.Error(ctx, "upstream fetch failed", observe.Field{Key: "error", Value: err.Error()})
		return Result{}, &UpstreamError{Endpoint: op.Endpoint, Err: err}
	}
	return Result{Body: body}, nil
}

// fetch calls the upstream with its own copy of call, so the params used for
// the cache key stay intact.
//
// A coalesced call is shared by every waiting caller, so it runs detached
// from any single caller's cancellation. Each caller stops waiting when its
// own ctx is done; the shared call is bounded by the upstream's deadlines.
func (f *Facade) fetch(ctx context.Context, endpoint string, call map[string]any) ([]byte, error) {
	if f.group == nil {
		return f.upstream.Fetch(ctx, endpoint, cloneParams(call))
	}

	key, err := f.cache.Key(endpoint, call)
	if err != nil {
		return f.upstream.Fetch(ctx, endpoint, cloneParams(call))
	}

	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan(key, func() (any, error) {
		return f.upstream.Fetch(shared, endpoint, cloneParams(call))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		body, _ := r.Val.([]byte)
		if r.Shared {
			body = bytes.Clone(body)
		}
		return body, nil
	}
}

// Limiter returns the rate limiter shared by every endpoint.
func (f *Facade) Limiter() *resilience.RateLimiter { return f.limiter }

// Cache returns the response cache.
func (f *Facade) Cache() *cache.ResponseCache { return f.cache }

// Policy returns the caching policy.
func (f *Facade) Policy() cache.Policy { return f.policy }
