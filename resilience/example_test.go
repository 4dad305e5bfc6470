package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rklugsederoeaw/kulturpool-mcp-server/resilience"
)

func ExampleNewRateLimiter() {
	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{
		MaxRequests: 2,
		Window:      time.Hour,
	})

	fmt.Println(rl.Allow())
	fmt.Println(rl.Allow())
	fmt.Println(rl.Allow())
	// Output:
	// true
	// true
	// false
}

func ExampleRateLimiter_Execute() {
	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{
		MaxRequests: 1,
		Window:      time.Minute,
	})

	ctx := context.Background()
	op := func(ctx context.Context) error { return nil }

	fmt.Println("first:", rl.Execute(ctx, op))

	err := rl.Execute(ctx, op)
	fmt.Println("second limited:", errors.Is(err, resilience.ErrRateLimitExceeded))
	// Output:
	// first: <nil>
	// second limited: true
}
