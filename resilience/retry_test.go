package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewRetry_Defaults(t *testing.T) {
	r := NewRetry(RetryConfig{})

	if r.config.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", r.config.MaxAttempts)
	}
	if r.config.InitialDelay != 100*time.Millisecond {
		t.Errorf("InitialDelay = %v, want 100ms", r.config.InitialDelay)
	}
	if r.config.MaxDelay != 30*time.Second {
		t.Errorf("MaxDelay = %v, want 30s", r.config.MaxDelay)
	}
	if r.config.Multiplier != 2.0 {
		t.Errorf("Multiplier = %f, want 2.0", r.config.Multiplier)
	}
}

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	r := NewRetry(RetryConfig{MaxAttempts: 3})

	calls := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	r := NewRetry(RetryConfig{
		MaxAttempts:  4,
		InitialDelay: 10 * time.Millisecond,
		Multiplier:   2.0,
	})

	testErr := errors.New("transient")
	calls := 0

	start := time.Now()
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls <= 2 {
			return testErr
		}
		return nil
	})
	elapsed := time.Since(start)

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}

	// Backoff: 10ms after attempt 1, 20ms after attempt 2.
	if elapsed < 30*time.Millisecond {
		t.Errorf("elapsed = %v, want at least 30ms of backoff", elapsed)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	r := NewRetry(RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
	})

	testErr := errors.New("persistent")
	calls := 0

	err := r.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return testErr
	})

	// The original error is returned unchanged, not a wrapper.
	if err != testErr {
		t.Errorf("Execute() error = %v, want %v", err, testErr)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_SingleAttempt(t *testing.T) {
	r := NewRetry(RetryConfig{MaxAttempts: 1})

	testErr := errors.New("boom")
	calls := 0

	start := time.Now()
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return testErr
	})

	if err != testErr {
		t.Errorf("Execute() error = %v, want %v", err, testErr)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry)", calls)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("elapsed = %v, expected immediate propagation", elapsed)
	}
}

func TestRetry_RetryIfRejects(t *testing.T) {
	permanentErr := errors.New("permanent")

	r := NewRetry(RetryConfig{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		RetryIf: func(err error) bool {
			return err != permanentErr
		},
	})

	calls := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return permanentErr
	})

	if err != permanentErr {
		t.Errorf("Execute() error = %v, want %v", err, permanentErr)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (non-retryable)", calls)
	}
}

func TestRetry_ContextCancelledDuringBackoff(t *testing.T) {
	r := NewRetry(RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := r.Execute(ctx, func(ctx context.Context) error {
		return errors.New("fail")
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Execute() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestRetry_OnRetryCallback(t *testing.T) {
	var attempts []int

	r := NewRetry(RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			attempts = append(attempts, attempt)
		},
	})

	_ = r.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("fail")
	})

	if len(attempts) != 2 {
		t.Fatalf("OnRetry called %d times, want 2", len(attempts))
	}
	if attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("attempts = %v, want [1 2]", attempts)
	}
}

func TestRetry_CalculateDelay(t *testing.T) {
	tests := []struct {
		name    string
		config  RetryConfig
		attempt int
		want    time.Duration
	}{
		{
			name:    "exponential first",
			config:  RetryConfig{InitialDelay: 100 * time.Millisecond, Multiplier: 2.0},
			attempt: 1,
			want:    100 * time.Millisecond,
		},
		{
			name:    "exponential third",
			config:  RetryConfig{InitialDelay: 100 * time.Millisecond, Multiplier: 2.0},
			attempt: 3,
			want:    400 * time.Millisecond,
		},
		{
			name:    "exponential capped",
			config:  RetryConfig{InitialDelay: 100 * time.Millisecond, Multiplier: 2.0, MaxDelay: 250 * time.Millisecond},
			attempt: 3,
			want:    250 * time.Millisecond,
		},
		{
			name:    "linear",
			config:  RetryConfig{InitialDelay: 50 * time.Millisecond, Strategy: BackoffLinear},
			attempt: 3,
			want:    150 * time.Millisecond,
		},
		{
			name:    "constant",
			config:  RetryConfig{InitialDelay: 50 * time.Millisecond, Strategy: BackoffConstant},
			attempt: 4,
			want:    50 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRetry(tt.config)
			if got := r.calculateDelay(tt.attempt); got != tt.want {
				t.Errorf("calculateDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}
