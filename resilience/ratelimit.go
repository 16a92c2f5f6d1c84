package resilience

import (
	"context"
	"sync"
	"time"
)

// RateLimiterConfig configures the rate limiter.
type RateLimiterConfig struct {
	// MaxRequests is the number of operations accepted per window.
	// Default: 100
	MaxRequests int

	// Window is the sliding time window.
	// Default: 1 second
	Window time.Duration

	// PollInterval is the pause between Wait re-checks.
	// Default: 100ms
	PollInterval time.Duration

	// WaitOnLimit makes Execute wait for acceptance instead of
	// returning ErrRateLimitExceeded.
	// Default: false
	WaitOnLimit bool
}

// RateLimiter implements an approximate sliding-window rate limiter.
//
// Acceptance is accounted by a list of accepted-operation timestamps.
// Entries older than Window are purged before every decision, then a
// request is accepted iff fewer than MaxRequests remain. Bursts at a
// window boundary are smoothed but not perfectly bounded across
// boundaries.
type RateLimiter struct {
	config RateLimiterConfig

	mu       sync.Mutex
	accepted []time.Time
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	// Apply defaults
	if config.MaxRequests <= 0 {
		config.MaxRequests = 100
	}
	if config.Window <= 0 {
		config.Window = time.Second
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 100 * time.Millisecond
	}

	return &RateLimiter{
		config:   config,
		accepted: make([]time.Time, 0, config.MaxRequests),
	}
}

// Allow checks if a request is accepted under the rate limit,
// recording the acceptance inline.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.purgeLocked(now)

	if len(rl.accepted) < rl.config.MaxRequests {
		rl.accepted = append(rl.accepted, now)
		return true
	}

	return false
}

// Wait blocks until a request is accepted or the context is cancelled.
// It re-polls Allow at PollInterval; it never fails with a rate limit
// error, only with the context's error.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		if rl.Allow() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rl.config.PollInterval):
			// Poll again
		}
	}
}

// Execute runs the operation if accepted by the rate limit.
func (rl *RateLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if rl.config.WaitOnLimit {
		if err := rl.Wait(ctx); err != nil {
			return err
		}
	} else if !rl.Allow() {
		return ErrRateLimitExceeded
	}

	return op(ctx)
}

// purgeLocked drops timestamps that have fallen out of the window.
func (rl *RateLimiter) purgeLocked(now time.Time) {
	cutoff := now.Add(-rl.config.Window)

	i := 0
	for i < len(rl.accepted) && !rl.accepted[i].After(cutoff) {
		i++
	}
	if i > 0 {
		rl.accepted = append(rl.accepted[:0], rl.accepted[i:]...)
	}
}

// Stats returns current rate limiter statistics.
func (rl *RateLimiter) Stats() RateLimiterStats {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.purgeLocked(time.Now())

	return RateLimiterStats{
		Current:   len(rl.accepted),
		Max:       rl.config.MaxRequests,
		Remaining: rl.config.MaxRequests - len(rl.accepted),
		Window:    rl.config.Window,
	}
}

// Reset clears the acceptance window.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.accepted = rl.accepted[:0]
}

// RateLimiterStats contains rate limiter statistics.
type RateLimiterStats struct {
	Current   int
	Max       int
	Remaining int
	Window    time.Duration
}
