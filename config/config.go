package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rklugsederoeaw/kulturpool-mcp-server/cache"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/heritage"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/kulturpool"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/observe"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/resilience"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "KULTURPOOL_"

// Config is the complete server configuration.
type Config struct {
	Upstream      UpstreamConfig      `toml:"upstream" envPrefix:"UPSTREAM_"`
	RateLimit     RateLimitConfig     `toml:"rate_limit" envPrefix:"RATE_LIMIT_"`
	Cache         CacheConfig         `toml:"cache" envPrefix:"CACHE_"`
	Details       DetailsConfig       `toml:"details" envPrefix:"DETAILS_"`
	Health        HealthConfig        `toml:"health" envPrefix:"HEALTH_"`
	Observability ObservabilityConfig `toml:"observability" envPrefix:"OBSERVE_"`
}

// UpstreamConfig configures the Kulturpool API client.
type UpstreamConfig struct {
	BaseURL       string   `toml:"base_url" env:"BASE_URL"`
	SearchTimeout Duration `toml:"search_timeout" env:"SEARCH_TIMEOUT"`
	Timeout       Duration `toml:"timeout" env:"TIMEOUT"`
	UserAgent     string   `toml:"user_agent" env:"USER_AGENT"`
}

// RateLimitConfig bounds upstream requests.
type RateLimitConfig struct {
	MaxRequests int      `toml:"max_requests" env:"MAX_REQUESTS"`
	Window      Duration `toml:"window" env:"WINDOW"`
}

// CacheConfig configures the response cache and its lifetimes.
type CacheConfig struct {
	// MaxEntries of zero disables caching.
	MaxEntries      int      `toml:"max_entries" env:"MAX_ENTRIES"`
	CleanupInterval Duration `toml:"cleanup_interval" env:"CLEANUP_INTERVAL"`
	Coalesce        bool     `toml:"coalesce" env:"COALESCE"`

	MaxTTL                Duration `toml:"max_ttl" env:"MAX_TTL"`
	SearchTTL             Duration `toml:"search_ttl" env:"SEARCH_TTL"`
	ObjectTTL             Duration `toml:"object_ttl" env:"OBJECT_TTL"`
	InstitutionsTTL       Duration `toml:"institutions_ttl" env:"INSTITUTIONS_TTL"`
	InstitutionDetailsTTL Duration `toml:"institution_details_ttl" env:"INSTITUTION_DETAILS_TTL"`
	AssetTTL              Duration `toml:"asset_ttl" env:"ASSET_TTL"`
}

// DetailsConfig configures batch object lookups.
type DetailsConfig struct {
	Concurrency int `toml:"concurrency" env:"CONCURRENCY"`
}

// HealthConfig sets the degraded thresholds of the health checks.
type HealthConfig struct {
	QuotaLowWater float64  `toml:"quota_low_water" env:"QUOTA_LOW_WATER"`
	SlowUpstream  Duration `toml:"slow_upstream" env:"SLOW_UPSTREAM"`
}

// ObservabilityConfig configures logging, metrics and tracing.
type ObservabilityConfig struct {
	ServiceName     string  `toml:"service_name" env:"SERVICE_NAME"`
	Version         string  `toml:"version" env:"VERSION"`
	LogEnabled      bool    `toml:"log_enabled" env:"LOG_ENABLED"`
	LogLevel        string  `toml:"log_level" env:"LOG_LEVEL"`
	MetricsEnabled  bool    `toml:"metrics_enabled" env:"METRICS_ENABLED"`
	MetricsExporter string  `toml:"metrics_exporter" env:"METRICS_EXPORTER"`
	TracingEnabled  bool    `toml:"tracing_enabled" env:"TRACING_ENABLED"`
	TracingExporter string  `toml:"tracing_exporter" env:"TRACING_EXPORTER"`
	SamplePct       float64 `toml:"sample_pct" env:"SAMPLE_PCT"`
}

// Default returns the built-in configuration.
func Default() Config {
	svc := heritage.DefaultConfig()
	return Config{
		Upstream: UpstreamConfig{
			BaseURL:       kulturpool.DefaultBaseURL,
			SearchTimeout: Duration{kulturpool.DefaultSearchTimeout},
			Timeout:       Duration{kulturpool.DefaultTimeout},
			UserAgent:     kulturpool.DefaultUserAgent,
		},
		RateLimit: RateLimitConfig{
			MaxRequests: svc.RateLimit.MaxRequests,
			Window:      Duration{svc.RateLimit.Window},
		},
		Cache: CacheConfig{
			MaxEntries:            svc.CacheEntries,
			CleanupInterval:       Duration{svc.CleanupInterval},
			MaxTTL:                Duration{24 * time.Hour},
			SearchTTL:             Duration{heritage.SearchTTL},
			ObjectTTL:             Duration{heritage.ObjectTTL},
			InstitutionsTTL:       Duration{heritage.InstitutionsTTL},
			InstitutionDetailsTTL: Duration{heritage.InstitutionDetailsTTL},
			AssetTTL:              Duration{heritage.AssetTTL},
		},
		Details: DetailsConfig{Concurrency: svc.DetailConcurrency},
		Health: HealthConfig{
			QuotaLowWater: svc.QuotaLowWater,
			SlowUpstream:  Duration{svc.SlowUpstream},
		},
		Observability: ObservabilityConfig{
			ServiceName:     "kulturpool-mcp-server",
			Version:         "1.0.0",
			LogEnabled:      true,
			LogLevel:        "info",
			MetricsExporter: "none",
			TracingExporter: "none",
			SamplePct:       1.0,
		},
	}
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("upstream.base_url %q must be an http(s) URL", c.Upstream.BaseURL)
	}
	if c.Upstream.SearchTimeout.Duration <= 0 {
		add("upstream.search_timeout must be positive")
	}
	if c.Upstream.Timeout.Duration <= 0 {
		add("upstream.timeout must be positive")
	}
	if c.RateLimit.MaxRequests < 1 {
		add("rate_limit.max_requests must be at least 1, got %d", c.RateLimit.MaxRequests)
	}
	if c.RateLimit.Window.Duration <= 0 {
		add("rate_limit.window must be positive")
	}
	if c.Cache.MaxEntries < 0 {
		add("cache.max_entries must not be negative, got %d", c.Cache.MaxEntries)
	}
	if c.Cache.CleanupInterval.Duration <= 0 {
		add("cache.cleanup_interval must be positive")
	}
	for name, ttl := range c.ttls() {
		if ttl < 0 {
			add("cache.%s must not be negative", name)
		}
	}
	if c.Details.Concurrency < 1 {
		add("details.concurrency must be at least 1, got %d", c.Details.Concurrency)
	}
	if c.Health.QuotaLowWater < 0 || c.Health.QuotaLowWater >= 1 {
		add("health.quota_low_water must be in [0, 1), got %g", c.Health.QuotaLowWater)
	}

	obs := c.Observe()
	if err := obs.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: observability: %w", ErrInvalidConfig, err))
	}
	return errors.Join(errs...)
}

func (c Config) ttls() map[string]time.Duration {
	return map[string]time.Duration{
		"max_ttl":                 c.Cache.MaxTTL.Duration,
		"search_ttl":              c.Cache.SearchTTL.Duration,
		"object_ttl":              c.Cache.ObjectTTL.Duration,
		"institutions_ttl":        c.Cache.InstitutionsTTL.Duration,
		"institution_details_ttl": c.Cache.InstitutionDetailsTTL.Duration,
		"asset_ttl":               c.Cache.AssetTTL.Duration,
	}
}

// Policy returns the per-endpoint cache policy.
func (c Config) Policy() cache.Policy {
	return cache.Policy{
		DefaultTTL: c.Cache.SearchTTL.Duration,
		MaxTTL:     c.Cache.MaxTTL.Duration,
		EndpointTTL: map[string]time.Duration{
			kulturpool.EndpointSearch:             c.Cache.SearchTTL.Duration,
			kulturpool.EndpointObject:             c.Cache.ObjectTTL.Duration,
			kulturpool.EndpointInstitutions:       c.Cache.InstitutionsTTL.Duration,
			kulturpool.EndpointInstitutionDetails: c.Cache.InstitutionDetailsTTL.Duration,
			kulturpool.EndpointAssets:             c.Cache.AssetTTL.Duration,
		},
	}
}

// Service returns the heritage service configuration.
func (c Config) Service() heritage.Config {
	policy := c.Policy()
	return heritage.Config{
		RateLimit: resilience.RateLimiterConfig{
			MaxRequests: c.RateLimit.MaxRequests,
			Window:      c.RateLimit.Window.Duration,
		},
		CacheEntries:      c.Cache.MaxEntries,
		CleanupInterval:   c.Cache.CleanupInterval.Duration,
		Policy:            &policy,
		DetailConcurrency: c.Details.Concurrency,
		Coalesce:          c.Cache.Coalesce,
		QuotaLowWater:     c.Health.QuotaLowWater,
		SlowUpstream:      c.Health.SlowUpstream.Duration,
	}
}

// Client returns the upstream client configuration.
func (c Config) Client() kulturpool.Config {
	return kulturpool.Config{
		BaseURL:       c.Upstream.BaseURL,
		SearchTimeout: c.Upstream.SearchTimeout.Duration,
		Timeout:       c.Upstream.Timeout.Duration,
		UserAgent:     c.Upstream.UserAgent,
	}
}

// Observe returns the observability configuration.
func (c Config) Observe() observe.Config {
	o := c.Observability
	return observe.Config{
		ServiceName: o.ServiceName,
		Version:     o.Version,
		Attributes:  map[string]string{"heritage.upstream": c.Upstream.BaseURL},
		Global:      true,
		Tracing: observe.TracingConfig{
			Enabled:   o.TracingEnabled,
			Exporter:  o.TracingExporter,
			SamplePct: o.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  o.MetricsEnabled,
			Exporter: o.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: o.LogEnabled,
			Level:   o.LogLevel,
		},
	}
}
