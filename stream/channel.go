package stream

import "sync"

// Channel is a multi-subscriber broadcast channel.
//
// Every value published after a subscriber attaches, and before it
// detaches, is delivered to that subscriber exactly once, in publish
// order. Values published before subscription are not replayed.
//
// Delivery is synchronous: Publish invokes each subscriber callback in
// attach order before returning. A value published while a delivery is
// in progress on the same channel (from a subscriber callback, or from
// another goroutine) is queued and delivered after it, so re-entrant
// publishes do not deadlock and subscribers still observe one
// channel-wide FIFO order. Callbacks must not block.
type Channel[T any] struct {
	mu     sync.Mutex
	subs   []*Subscription[T]
	closed bool

	// delivering marks an in-progress Publish; values arriving while it
	// is set are appended to pending and drained by that Publish call.
	delivering bool
	pending    []T
}

// Subscription is a handle to an attached subscriber.
// It is removed from its channel by identity on Unsubscribe.
type Subscription[T any] struct {
	ch *Channel[T]
	fn func(T)
}

// Unsubscribe detaches the subscriber; no further values are delivered.
// Idempotent.
func (s *Subscription[T]) Unsubscribe() {
	if s == nil || s.ch == nil {
		return
	}
	s.ch.remove(s)
}

// NewChannel creates a new broadcast channel.
func NewChannel[T any]() *Channel[T] {
	return &Channel[T]{}
}

// Subscribe attaches fn as a subscriber and returns its handle.
// Subscribing to a closed channel returns a handle that never fires.
func (c *Channel[T]) Subscribe(fn func(T)) *Subscription[T] {
	sub := &Subscription[T]{ch: c, fn: fn}

	c.mu.Lock()
	if !c.closed {
		c.subs = append(c.subs, sub)
	}
	c.mu.Unlock()

	return sub
}

// Publish broadcasts v to all current subscribers.
// Returns ErrChannelClosed after Close; no value is delivered then.
func (c *Channel[T]) Publish(v T) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrChannelClosed
	}
	if c.delivering {
		c.pending = append(c.pending, v)
		c.mu.Unlock()
		return nil
	}
	c.delivering = true
	subs := c.snapshotLocked()
	c.mu.Unlock()

	c.deliver(subs, v)

	for {
		c.mu.Lock()
		if c.closed || len(c.pending) == 0 {
			c.pending = nil
			c.delivering = false
			c.mu.Unlock()
			return nil
		}
		next := c.pending[0]
		c.pending = c.pending[1:]
		subs = c.snapshotLocked()
		c.mu.Unlock()

		c.deliver(subs, next)
	}
}

func (c *Channel[T]) snapshotLocked() []*Subscription[T] {
	subs := make([]*Subscription[T], len(c.subs))
	copy(subs, c.subs)
	return subs
}

func (c *Channel[T]) deliver(subs []*Subscription[T], v T) {
	for _, s := range subs {
		s.fn(v)
	}
}

// Close completes the channel. Further publishes are rejected and all
// subscribers are detached. Idempotent.
func (c *Channel[T]) Close() {
	c.mu.Lock()
	c.closed = true
	c.subs = nil
	c.pending = nil
	c.mu.Unlock()
}

// Closed reports whether the channel has been completed.
func (c *Channel[T]) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Subscribers returns the current subscriber count.
func (c *Channel[T]) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

func (c *Channel[T]) remove(sub *Subscription[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return
		}
	}
}
