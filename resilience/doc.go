// Package resilience provides resilience patterns for asynchronous operations.
//
// This package implements common resilience patterns that help callers
// handle failures gracefully. The patterns can be composed together to
// build robust execution pipelines.
//
// # Patterns
//
// The package provides the following resilience patterns:
//
//   - Circuit Breaker: Prevents cascading failures by stopping requests to
//     failing services after a threshold is reached, with a per-call
//     timeout on every attempted call.
//
//   - Retry: Automatically retries failed operations with configurable
//     backoff strategies (exponential, linear, constant).
//
//   - Rate Limiter: Caps accepted operations within a sliding time window
//     to prevent overwhelming downstream services.
//
//   - Timeout: Ensures operations complete within a time limit.
//
// Concurrency bounding lives in the sibling pool package and composes
// through the Executor here.
//
// # Usage
//
// Each pattern can be used independently or composed together:
//
//	// Create a circuit breaker
//	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	    MaxFailures:  5,
//	    CallTimeout:  2 * time.Second,
//	    ResetTimeout: time.Minute,
//	})
//
//	// Create a retry policy
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts:  3,
//	    InitialDelay: 100 * time.Millisecond,
//	    MaxDelay:     5 * time.Second,
//	    Multiplier:   2.0,
//	})
//
//	// Create a sliding-window rate limiter
//	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{
//	    MaxRequests: 100,
//	    Window:      time.Second,
//	})
//
//	// Compose patterns
//	executor := resilience.NewExecutor(
//	    resilience.WithCircuitBreaker(cb),
//	    resilience.WithRetry(retry),
//	    resilience.WithRateLimiter(rl),
//	    resilience.WithTimeout(5*time.Second),
//	)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return callExternalService(ctx)
//	})
package resilience
