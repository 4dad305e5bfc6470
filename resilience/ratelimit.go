package resilience

import (
	"context"
	"sync"
	"time"
)

// DefaultClient is the client identity used by Allow.
const DefaultClient = "default"

// RateLimiterConfig configures the rate limiter.
type RateLimiterConfig struct {
	// MaxRequests is the number of requests admitted per window and client.
	// Default: 100
	MaxRequests int

	// Window is the trailing duration requests are counted over.
	// Default: 1 hour
	Window time.Duration

	// Clock returns the current time.
	// Default: time.Now
	Clock func() time.Time
}

// RateLimiter implements a sliding window rate limiter keyed by client.
//
// Each client keeps the chronologically ordered timestamps of its admitted
// requests. A request is admitted when fewer than MaxRequests timestamps lie
// within [now-Window, now].
type RateLimiter struct {
	config RateLimiterConfig

	mu      sync.Mutex
	windows map[string][]time.Time
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	// Apply defaults
	if config.MaxRequests <= 0 {
		config.MaxRequests = 100
	}
	if config.Window <= 0 {
		config.Window = time.Hour
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}

	return &RateLimiter{
		config:  config,
		windows: make(map[string][]time.Time),
	}
}

// Allow checks if a request from the default client is admitted.
func (rl *RateLimiter) Allow() bool {
	return rl.AllowClient(DefaultClient)
}

// AllowClient checks if a request from client is admitted and records it.
// A rejected request leaves the window untouched.
func (rl *RateLimiter) AllowClient(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.config.Clock()
	live := rl.trimLocked(client, now)

	if len(live) >= rl.config.MaxRequests {
		return false
	}

	rl.windows[client] = append(live, now)
	return true
}

// Remaining returns how many more requests client may make right now.
func (rl *RateLimiter) Remaining(client string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	live := rl.trimLocked(client, rl.config.Clock())
	if n := rl.config.MaxRequests - len(live); n > 0 {
		return n
	}
	return 0
}

// Execute runs the operation if the default client is admitted.
func (rl *RateLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !rl.Allow() {
		return ErrRateLimitExceeded
	}
	return op(ctx)
}

// PruneIdle drops clients without timestamps inside the window and returns
// how many were removed.
func (rl *RateLimiter) PruneIdle() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.config.Clock()
	removed := 0
	for client := range rl.windows {
		if len(rl.trimLocked(client, now)) == 0 {
			delete(rl.windows, client)
			removed++
		}
	}
	return removed
}

// Reset forgets every recorded request.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.windows = make(map[string][]time.Time)
}

// Config returns the rate limiter configuration.
func (rl *RateLimiter) Config() RateLimiterConfig {
	return rl.config
}

// trimLocked drops the prefix of timestamps older than now-Window. Timestamps
// are appended in order, so each is removed at most once.
func (rl *RateLimiter) trimLocked(client string, now time.Time) []time.Time {
	times := rl.windows[client]
	cutoff := now.Add(-rl.config.Window)

	i := 0
	for i < len(times) && times[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		times = times[i:]
		rl.windows[client] = times
	}
	return times
}
