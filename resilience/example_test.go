package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/asyncops/resilience"
)

func ExampleCircuitBreaker() {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		MaxFailures:  2,
		ResetTimeout: time.Minute,
	})

	op := func(ctx context.Context) error {
		return errors.New("downstream unavailable")
	}

	// Two failures open the circuit.
	_ = cb.Execute(context.Background(), op)
	_ = cb.Execute(context.Background(), op)

	err := cb.Execute(context.Background(), op)
	fmt.Println(cb.State(), errors.Is(err, resilience.ErrCircuitOpen))
	// Output:
	// open true
}

func ExampleRetry() {
	retry := resilience.NewRetry(resilience.RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
	})

	attempts := 0
	err := retry.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	fmt.Println(attempts, err)
	// Output:
	// 3 <nil>
}

func ExampleRateLimiter() {
	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{
		MaxRequests: 2,
		Window:      time.Minute,
	})

	fmt.Println(rl.Allow(), rl.Allow(), rl.Allow())

	stats := rl.Stats()
	fmt.Println(stats.Current, stats.Remaining)
	// Output:
	// true true false
	// 2 0
}
