package stream

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/asyncops/observe"
)

// DataStreamerConfig configures a DataStreamer.
type DataStreamerConfig[T any] struct {
	// Fetch retrieves the next batch of items. Required.
	Fetch func(ctx context.Context) ([]T, error)

	// Key extracts an item's identity for snapshot merging. Required.
	Key func(item T) string

	// Interval is the polling interval.
	// Default: 5 seconds
	Interval time.Duration

	// Logger receives fetch failures.
	// Default: discard.
	Logger observe.Logger

	// Hub, when set together with Name, mirrors snapshots and fetch
	// errors onto the hub's global channel.
	Hub  *Hub
	Name string
}

// DataStreamer periodically fetches a batch of items, merges them into a
// keyed snapshot (last-write-wins per key, accumulated across cycles),
// and republishes the full snapshot as an ordered sequence.
//
// Snapshot order is first-seen key order, stable across merges. New
// subscribers receive the current snapshot immediately on attach. Fetch
// failures are logged and leave the previous snapshot intact.
type DataStreamer[T any] struct {
	config DataStreamerConfig[T]
	ch     *Channel[[]T]

	cancel context.CancelFunc
	done   chan struct{}
	wg     sync.WaitGroup

	mu        sync.Mutex
	byKey     map[string]T
	order     []string
	destroyed bool
}

// NewDataStreamer creates a streamer and starts its polling loop.
func NewDataStreamer[T any](config DataStreamerConfig[T]) (*DataStreamer[T], error) {
	if config.Fetch == nil {
		return nil, ErrNilFetch
	}
	if config.Key == nil {
		return nil, ErrNilKey
	}
	if config.Interval <= 0 {
		config.Interval = 5 * time.Second
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &DataStreamer[T]{
		config: config,
		ch:     NewChannel[[]T](),
		cancel: cancel,
		done:   make(chan struct{}),
		byKey:  make(map[string]T),
	}

	d.wg.Add(1)
	go d.poll(ctx)

	return d, nil
}

func (d *DataStreamer[T]) poll(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.done:
			return
		case <-ticker.C:
			if err := d.Refresh(ctx); err != nil {
				// Previous snapshot stays intact; degrade gracefully.
				d.config.Logger.Warn(ctx, "data stream refresh failed",
					observe.Field{Key: "error", Value: err.Error()},
				)
				if d.config.Hub != nil && d.config.Name != "" {
					d.config.Hub.EmitError(d.config.Name, err)
				}
			}
		}
	}
}

// Refresh fetches one batch immediately and merges it into the snapshot.
func (d *DataStreamer[T]) Refresh(ctx context.Context) error {
	items, err := d.config.Fetch(ctx)
	if err != nil {
		return err
	}

	d.mu.Lock()
	for _, item := range items {
		d.mergeLocked(item)
	}
	d.mu.Unlock()

	d.publish()
	return nil
}

// AddItem inserts or replaces an item and republishes immediately.
func (d *DataStreamer[T]) AddItem(item T) {
	d.mu.Lock()
	d.mergeLocked(item)
	d.mu.Unlock()

	d.publish()
}

// UpdateItem replaces the item under its key and republishes immediately.
func (d *DataStreamer[T]) UpdateItem(item T) {
	d.AddItem(item)
}

// RemoveItem drops the item under key and republishes immediately.
// Unknown keys are ignored.
func (d *DataStreamer[T]) RemoveItem(key string) {
	d.mu.Lock()
	if _, ok := d.byKey[key]; ok {
		delete(d.byKey, key)
		for i, k := range d.order {
			if k == key {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
	}
	d.mu.Unlock()

	d.publish()
}

// mergeLocked applies last-write-wins per key, appending unseen keys.
func (d *DataStreamer[T]) mergeLocked(item T) {
	key := d.config.Key(item)
	if _, ok := d.byKey[key]; !ok {
		d.order = append(d.order, key)
	}
	d.byKey[key] = item
}

// Snapshot returns the current merged snapshot in first-seen key order.
func (d *DataStreamer[T]) Snapshot() []T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

func (d *DataStreamer[T]) snapshotLocked() []T {
	snap := make([]T, 0, len(d.order))
	for _, key := range d.order {
		snap = append(snap, d.byKey[key])
	}
	return snap
}

// Subscribe attaches fn and delivers the current snapshot to it
// immediately, then every republished snapshot until Unsubscribe.
func (d *DataStreamer[T]) Subscribe(fn func([]T)) *Subscription[[]T] {
	sub := d.ch.Subscribe(fn)
	fn(d.Snapshot())
	return sub
}

func (d *DataStreamer[T]) publish() {
	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		return
	}
	snap := d.snapshotLocked()
	d.mu.Unlock()

	_ = d.ch.Publish(snap)
	if d.config.Hub != nil && d.config.Name != "" {
		_ = d.config.Hub.Emit(d.config.Name, snap)
	}
}

// Destroy stops the polling loop and closes the channel.
// No events are delivered after Destroy returns. Idempotent.
func (d *DataStreamer[T]) Destroy() {
	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		return
	}
	d.destroyed = true
	d.mu.Unlock()

	d.cancel()
	close(d.done)
	d.wg.Wait()
	d.ch.Close()
}
