// Package health reports the state of the service components.
//
// A Checker reports a Status (Healthy, Degraded or Unhealthy) with a message
// and details. The package ships checkers for the pieces a search request
// depends on:
//
//   - QuotaChecker reads the remaining rate limit quota. It degrades when
//     little headroom is left and fails once the window is full.
//   - UpstreamChecker pings the upstream API and degrades on slow probes.
//   - CacheChecker reports cache occupancy and hit ratio.
//
// # Aggregating
//
// An Aggregator runs every registered checker under one timeout and folds
// the results into a Report whose status is the most severe one observed:
//
//	agg := health.NewAggregator()
//	agg.Register(
//	    health.NewQuotaChecker(limiter, 0.1),
//	    health.NewUpstreamChecker(client, 2*time.Second),
//	    health.NewCacheChecker(lru),
//	)
//	report := agg.Report(ctx)
//
// A checker that does not return before the timeout is reported as
// unhealthy with ErrCheckTimeout.
package health
