package stream

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/asyncops/observe"
)

// Envelope tags an event for the hub's global channel.
type Envelope struct {
	Type      string    // Originating channel name (suffix ".error" for stream errors)
	Payload   any       // The published value, or the error
	Timestamp time.Time // When the event was mirrored
	ID        string    // Unique event ID
}

// HubConfig configures the hub.
type HubConfig struct {
	// Logger receives hub lifecycle and error events.
	// Default: discard.
	Logger observe.Logger
}

// Hub is a registry of named broadcast channels.
//
// Every event emitted through the hub is also mirrored onto a global
// channel as a tagged Envelope, so one subscriber can observe all
// traffic.
type Hub struct {
	logger observe.Logger

	mu       sync.Mutex
	channels map[string]*Channel[any]
	global   *Channel[Envelope]
	closed   bool
}

// NewHub creates a new hub.
func NewHub(config HubConfig) *Hub {
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}

	return &Hub{
		logger:   config.Logger,
		channels: make(map[string]*Channel[any]),
		global:   NewChannel[Envelope](),
	}
}

// Channel returns the named channel, creating it if absent.
// Returns nil after Close.
func (h *Hub) Channel(name string) *Channel[any] {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}

	ch, ok := h.channels[name]
	if !ok {
		ch = NewChannel[any]()
		h.channels[name] = ch
	}
	return ch
}

// Emit broadcasts v on the named channel and mirrors it onto the global
// channel as an Envelope.
func (h *Hub) Emit(name string, v any) error {
	ch := h.Channel(name)
	if ch == nil {
		return ErrHubClosed
	}

	if err := ch.Publish(v); err != nil {
		return err
	}

	return h.publishGlobal(name, v)
}

// EmitError mirrors a stream error onto the global channel under
// "<name>.error" and logs it. Errors are not delivered to the named
// channel itself.
func (h *Hub) EmitError(name string, err error) {
	h.logger.Error(context.Background(), "stream error",
		observe.Field{Key: "channel", Value: name},
		observe.Field{Key: "error", Value: err.Error()},
	)
	_ = h.publishGlobal(name+".error", err)
}

func (h *Hub) publishGlobal(typ string, payload any) error {
	return h.global.Publish(Envelope{
		Type:      typ,
		Payload:   payload,
		Timestamp: time.Now(),
		ID:        uuid.NewString(),
	})
}

// Global returns the hub's global envelope channel.
func (h *Hub) Global() *Channel[Envelope] {
	return h.global
}

// Complete closes the named channel and removes it from the registry.
// Idempotent - unknown names are ignored.
func (h *Hub) Complete(name string) {
	h.mu.Lock()
	ch, ok := h.channels[name]
	if ok {
		delete(h.channels, name)
	}
	h.mu.Unlock()

	if ok {
		ch.Close()
	}
}

// Names returns the currently registered channel names.
func (h *Hub) Names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	names := make([]string, 0, len(h.channels))
	for name := range h.channels {
		names = append(names, name)
	}
	return names
}

// Close completes every channel and the global channel. Idempotent.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	channels := h.channels
	h.channels = nil
	h.mu.Unlock()

	for _, ch := range channels {
		ch.Close()
	}
	h.global.Close()
}
