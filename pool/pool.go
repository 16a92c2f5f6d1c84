package pool

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Config configures the pool.
type Config struct {
	// Concurrency is the maximum number of concurrent operations.
	// Values below 1 are clamped to 1.
	Concurrency int
}

// Pool limits concurrent operations to a fixed number of slots.
type Pool struct {
	concurrency int
	sem         chan struct{}

	mu        sync.Mutex
	active    int
	maxActive int
}

// New creates a new pool.
func New(config Config) *Pool {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}

	return &Pool{
		concurrency: config.Concurrency,
		sem:         make(chan struct{}, config.Concurrency),
	}
}

// Acquire blocks until a slot is free or the context is done.
func (p *Pool) Acquire(ctx context.Context) error {
	// Fast path: try non-blocking acquire
	select {
	case p.sem <- struct{}{}:
		p.trackAcquire()
		return nil
	default:
	}

	select {
	case p.sem <- struct{}{}:
		p.trackAcquire()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire acquires a slot without blocking.
// Returns false if no slot is available.
func (p *Pool) TryAcquire() bool {
	select {
	case p.sem <- struct{}{}:
		p.trackAcquire()
		return true
	default:
		return false
	}
}

// Release returns a slot to the pool.
func (p *Pool) Release() {
	select {
	case <-p.sem:
		p.mu.Lock()
		p.active--
		p.mu.Unlock()
	default:
		// Release without a matching Acquire; ignore.
	}
}

func (p *Pool) trackAcquire() {
	p.mu.Lock()
	p.active++
	if p.active > p.maxActive {
		p.maxActive = p.active
	}
	p.mu.Unlock()
}

// Execute runs the operation within a pool slot.
// The slot is released whether or not the operation fails.
func (p *Pool) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := p.Acquire(ctx); err != nil {
		return err
	}
	defer p.Release()

	return op(ctx)
}

// Metrics returns current pool metrics.
func (p *Pool) Metrics() Metrics {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Metrics{
		Active:      p.active,
		MaxActive:   p.maxActive,
		Available:   p.concurrency - p.active,
		Concurrency: p.concurrency,
	}
}

// Metrics contains pool statistics.
type Metrics struct {
	Active      int
	MaxActive   int
	Available   int
	Concurrency int
}

// Run executes a single value-returning task within a pool slot.
func Run[T any](ctx context.Context, p *Pool, task func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := p.Acquire(ctx); err != nil {
		return zero, err
	}
	defer p.Release()

	return task(ctx)
}

// RunAll executes all tasks through the pool and returns their results in
// input order. Results are collected into a slice indexed by task position,
// so completion order never reorders the output. The first task failure
// cancels the remaining tasks and is returned.
func RunAll[T any](ctx context.Context, p *Pool, tasks []func(context.Context) (T, error)) ([]T, error) {
	results := make([]T, len(tasks))

	g, ctx := errgroup.WithContext(ctx)
	for i, task := range tasks {
		g.Go(func() error {
			if err := p.Acquire(ctx); err != nil {
				return err
			}
			defer p.Release()

			v, err := task(ctx)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
