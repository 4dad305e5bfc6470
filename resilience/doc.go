// Package resilience provides request admission control for upstream calls.
//
// The RateLimiter counts admitted requests per client over a sliding window.
// Rejections are a normal outcome: Allow reports false and records nothing,
// so a rejected call can be retried later without cleanup.
//
// # Usage
//
//	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{
//	    MaxRequests: 100,
//	    Window:      time.Hour,
//	})
//
//	if !rl.Allow() {
//	    return resilience.ErrRateLimitExceeded
//	}
//
//	// Or wrap an operation
//	err := rl.Execute(ctx, func(ctx context.Context) error {
//	    return callUpstream(ctx)
//	})
package resilience
