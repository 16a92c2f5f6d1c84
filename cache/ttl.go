package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// TTLCache memoizes values per key for a bounded lifetime.
//
// TTL is measured from write time, not read time (no sliding expiration).
// Expired entries are dropped lazily on read; Cleanup purges them eagerly.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Reads never return an expired value; a miss triggers recomputation.
type TTLCache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	policy  Policy
	group   singleflight.Group
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// New creates a new TTL cache with the given policy.
func New[V any](policy Policy) *TTLCache[V] {
	return &TTLCache[V]{
		entries: make(map[string]entry[V]),
		policy:  policy,
	}
}

// GetOrLoad returns a live cached value for key, or computes and stores
// one via loader.
//
// Concurrent misses for the same key are de-duplicated: the loader runs
// at most once per key at a time and every waiter observes its result.
// Loader errors are propagated unchanged and nothing is stored.
func (c *TTLCache[V]) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (V, error)) (V, error) {
	var zero V

	if loader == nil {
		return zero, ErrNilLoader
	}
	if err := ValidateKey(key); err != nil {
		return zero, err
	}

	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent loader may have filled the entry already.
		if v, ok := c.Get(key); ok {
			return v, nil
		}

		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}

		c.store(key, v, c.policy.EffectiveTTL(0))
		return v, nil
	})
	if err != nil {
		return zero, err
	}

	return v.(V), nil
}

// Get retrieves a value from the cache. Returns (zero, false) on miss or expiry.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}

	// Check expiry
	if time.Now().After(e.expiresAt) {
		// Expired - clean up lazily
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return zero, false
	}

	return e.value, true
}

// Set stores a value under the policy's default TTL.
func (c *TTLCache[V]) Set(key string, value V) error {
	return c.SetTTL(key, value, 0)
}

// SetTTL stores a value with an explicit TTL, clamped by the policy.
// An effective TTL of zero means no caching.
func (c *TTLCache[V]) SetTTL(key string, value V, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	effective := c.policy.EffectiveTTL(ttl)
	if effective <= 0 {
		return nil
	}

	c.store(key, value, effective)
	return nil
}

func (c *TTLCache[V]) store(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
}

// Delete removes a value from the cache. Idempotent - no error on miss.
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Cleanup eagerly purges expired entries and returns how many were removed.
func (c *TTLCache[V]) Cleanup() int {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries, including any not yet lazily expired.
func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
