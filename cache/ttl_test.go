package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTTLCache_GetOrLoad_CachesWithinTTL(t *testing.T) {
	c := New[string](Policy{DefaultTTL: 50 * time.Millisecond})
	ctx := context.Background()

	calls := 0
	loader := func(ctx context.Context) (string, error) {
		calls++
		return "value", nil
	}

	v, err := c.GetOrLoad(ctx, "key", loader)
	if err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if v != "value" {
		t.Errorf("GetOrLoad() = %q, want %q", v, "value")
	}

	// Second read within TTL serves the cached value.
	if _, err := c.GetOrLoad(ctx, "key", loader); err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("loader calls = %d, want 1", calls)
	}
}

func TestTTLCache_GetOrLoad_RecomputesAfterExpiry(t *testing.T) {
	c := New[string](Policy{DefaultTTL: 20 * time.Millisecond})
	ctx := context.Background()

	calls := 0
	loader := func(ctx context.Context) (string, error) {
		calls++
		return "value", nil
	}

	_, _ = c.GetOrLoad(ctx, "key", loader)

	time.Sleep(30 * time.Millisecond)

	_, _ = c.GetOrLoad(ctx, "key", loader)
	if calls != 2 {
		t.Errorf("loader calls = %d, want 2 after TTL elapsed", calls)
	}
}

func TestTTLCache_GetNeverServesExpired(t *testing.T) {
	c := New[int](Policy{DefaultTTL: 10 * time.Millisecond})

	if err := c.Set("key", 42); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("key"); ok {
		t.Error("Get() returned an expired value")
	}
}

func TestTTLCache_TTLFromWriteTime(t *testing.T) {
	c := New[int](Policy{DefaultTTL: 40 * time.Millisecond})

	_ = c.Set("key", 1)

	// Reads must not slide the expiration.
	time.Sleep(25 * time.Millisecond)
	if _, ok := c.Get("key"); !ok {
		t.Fatal("value expired too early")
	}
	time.Sleep(25 * time.Millisecond)
	if _, ok := c.Get("key"); ok {
		t.Error("value still live past write-time TTL")
	}
}

func TestTTLCache_SetTTLClampedByPolicy(t *testing.T) {
	c := New[int](Policy{DefaultTTL: 10 * time.Millisecond, MaxTTL: 20 * time.Millisecond})

	_ = c.SetTTL("key", 1, time.Hour)

	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("key"); ok {
		t.Error("value outlived MaxTTL clamp")
	}
}

func TestTTLCache_NoCachePolicy(t *testing.T) {
	c := New[int](NoCachePolicy())

	_ = c.Set("key", 1)
	if _, ok := c.Get("key"); ok {
		t.Error("Get() hit with caching disabled")
	}
}

func TestTTLCache_Delete(t *testing.T) {
	c := New[int](DefaultPolicy())

	_ = c.Set("key", 1)
	c.Delete("key")

	if _, ok := c.Get("key"); ok {
		t.Error("Get() hit after Delete")
	}

	// Idempotent
	c.Delete("key")
}

func TestTTLCache_Cleanup(t *testing.T) {
	c := New[int](Policy{DefaultTTL: 10 * time.Millisecond})

	_ = c.Set("a", 1)
	_ = c.Set("b", 2)
	_ = c.SetTTL("c", 3, time.Hour)

	time.Sleep(20 * time.Millisecond)

	removed := c.Cleanup()
	if removed != 2 {
		t.Errorf("Cleanup() = %d, want 2", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestTTLCache_SingleFlight(t *testing.T) {
	c := New[string](DefaultPolicy())
	ctx := context.Background()

	var calls int64
	loader := func(ctx context.Context) (string, error) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const readers = 8
	var wg sync.WaitGroup
	wg.Add(readers)
	for i := 0; i < readers; i++ {
		go func() {
			defer wg.Done()
			v, err := c.GetOrLoad(ctx, "key", loader)
			if err != nil {
				t.Errorf("GetOrLoad() error = %v", err)
			}
			if v != "value" {
				t.Errorf("GetOrLoad() = %q, want %q", v, "value")
			}
		}()
	}
	wg.Wait()

	// Concurrent misses for the same key share one computation.
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Errorf("loader calls = %d, want 1", got)
	}
}

func TestTTLCache_LoaderErrorNotStored(t *testing.T) {
	c := New[string](DefaultPolicy())
	ctx := context.Background()

	testErr := errors.New("load failed")
	calls := 0

	_, err := c.GetOrLoad(ctx, "key", func(ctx context.Context) (string, error) {
		calls++
		return "", testErr
	})
	if err != testErr {
		t.Errorf("GetOrLoad() error = %v, want %v", err, testErr)
	}

	// The failure is not cached; the next read retries the loader.
	_, _ = c.GetOrLoad(ctx, "key", func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if calls != 2 {
		t.Errorf("loader calls = %d, want 2", calls)
	}
}

func TestTTLCache_GetOrLoad_InvalidKey(t *testing.T) {
	c := New[string](DefaultPolicy())

	_, err := c.GetOrLoad(context.Background(), "", func(ctx context.Context) (string, error) {
		return "", nil
	})
	if !errors.Is(err, ErrInvalidKey) {
		t.Errorf("GetOrLoad() error = %v, want ErrInvalidKey", err)
	}
}

func TestTTLCache_NilLoader(t *testing.T) {
	c := New[string](DefaultPolicy())

	_, err := c.GetOrLoad(context.Background(), "key", nil)
	if !errors.Is(err, ErrNilLoader) {
		t.Errorf("GetOrLoad() error = %v, want ErrNilLoader", err)
	}
}
