package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricRequestTotal       = "heritage.request.total"
	MetricRequestErrors      = "heritage.request.errors"
	MetricRequestDuration    = "heritage.request.duration_ms"
	MetricCacheLookups       = "heritage.cache.lookups"
	MetricRateLimitRejection = "heritage.ratelimit.rejections"
)

// Metrics records operation metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordExecution records an operation with duration and error status.
	RecordExecution(ctx context.Context, op Operation, duration time.Duration, err error)

	// RecordCacheLookup records a response cache hit or miss.
	RecordCacheLookup(ctx context.Context, op Operation, hit bool)

	// RecordRejection records a request refused by the rate limiter.
	RecordRejection(ctx context.Context, op Operation)
}

type metricsImpl struct {
	totalCount     metric.Int64Counter
	errorCount     metric.Int64Counter
	durationHist   metric.Float64Histogram
	cacheLookups   metric.Int64Counter
	rejectionCount metric.Int64Counter
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		MetricRequestTotal,
		metric.WithDescription("Total number of heritage operations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		MetricRequestErrors,
		metric.WithDescription("Total number of failed heritage operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		MetricRequestDuration,
		metric.WithDescription("Heritage operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter(
		MetricCacheLookups,
		metric.WithDescription("Response cache lookups by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	rejectionCount, err := meter.Int64Counter(
		MetricRateLimitRejection,
		metric.WithDescription("Requests refused by the rate limiter"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:     totalCount,
		errorCount:     errorCount,
		durationHist:   durationHist,
		cacheLookups:   cacheLookups,
		rejectionCount: rejectionCount,
	}, nil
}

func operationAttrs(op Operation) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String("operation", op.Name)}
	if op.Endpoint != "" {
		attrs = append(attrs, attribute.String("endpoint", op.Endpoint))
	}
	return attrs
}

func (m *metricsImpl) RecordExecution(ctx context.Context, op Operation, duration time.Duration, err error) {
	opt := metric.WithAttributes(operationAttrs(op)...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

func (m *metricsImpl) RecordCacheLookup(ctx context.Context, op Operation, hit bool) {
	attrs := append(operationAttrs(op), attribute.Bool("cache.hit", hit))
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *metricsImpl) RecordRejection(ctx context.Context, op Operation) {
	m.rejectionCount.Add(ctx, 1, metric.WithAttributes(operationAttrs(op)...))
}

type nopMetrics struct{}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics { return nopMetrics{} }

func (nopMetrics) RecordExecution(context.Context, Operation, time.Duration, error) {}
func (nopMetrics) RecordCacheLookup(context.Context, Operation, bool)               {}
func (nopMetrics) RecordRejection(context.Context, Operation)                       {}
