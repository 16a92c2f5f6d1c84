// Package asyncops bundles the toolkit's process-wide collaborators into
// an explicit registry constructed once at startup, instead of hidden
// module-level singletons. Tests construct fresh registries per test.
package asyncops

import (
	"context"

	"github.com/jonwraymond/asyncops/observe"
	"github.com/jonwraymond/asyncops/stream"
)

// Config configures a Registry.
type Config struct {
	// Observe configures telemetry for the whole registry.
	Observe observe.Config
}

// Registry owns the shared toolkit collaborators: the Observer and the
// default stream hub. Components that need them receive them explicitly.
type Registry struct {
	observer observe.Observer
	hub      *stream.Hub
}

// NewRegistry creates a registry, wiring the hub to the observer's logger.
func NewRegistry(ctx context.Context, cfg Config) (*Registry, error) {
	obs, err := observe.NewObserver(ctx, cfg.Observe)
	if err != nil {
		return nil, err
	}

	hub := stream.NewHub(stream.HubConfig{Logger: obs.Logger()})

	return &Registry{
		observer: obs,
		hub:      hub,
	}, nil
}

// Observer returns the registry's observer.
func (r *Registry) Observer() observe.Observer {
	return r.observer
}

// Logger returns the registry's logger.
func (r *Registry) Logger() observe.Logger {
	return r.observer.Logger()
}

// Hub returns the registry's default stream hub.
func (r *Registry) Hub() *stream.Hub {
	return r.hub
}

// Shutdown closes the hub and shuts down telemetry providers.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.hub.Close()
	return r.observer.Shutdown(ctx)
}
