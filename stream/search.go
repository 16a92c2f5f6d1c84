package stream

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/asyncops/observe"
)

// SearchStreamConfig configures a SearchStream.
type SearchStreamConfig[T any] struct {
	// Search executes a query. Required.
	Search func(ctx context.Context, query string) ([]T, error)

	// Debounce is the quiet period required after the last Search call
	// before a query is dispatched.
	// Default: 300ms
	Debounce time.Duration

	// MinQueryLength drops queries shorter than this length. Negative
	// values mean no minimum: every query dispatches, including empty.
	// Default: 2
	MinQueryLength int

	// Logger receives search failures.
	// Default: discard.
	Logger observe.Logger

	// Hub, when set together with Name, mirrors results and search
	// errors onto the hub's global channel.
	Hub  *Hub
	Name string
}

// SearchStream is a debounced, cancel-on-new-input query pipeline.
//
// Each dispatched query starts a new generation; only the result of the
// most recent generation reaches subscribers. An older query's in-flight
// result is discarded at the delivery stage, never merged or queued.
// Queries that never dispatch (consecutive duplicates of the last
// dispatched query, or queries shorter than MinQueryLength) are no-ops
// and do not supersede an in-flight query. Loading is set once per
// dispatched query and cleared exactly once per settled non-superseded
// query.
type SearchStream[T any] struct {
	config SearchStreamConfig[T]

	results *Channel[[]T]
	loading *Channel[bool]
	errs    *Channel[error]

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	timerGen     uint64 // identity of the pending debounce timer
	dispatchGen  uint64 // advances only when a query dispatches
	lastQuery    string
	hasLastQuery bool
	timer        *time.Timer
	destroyed    bool
}

// NewSearchStream creates a new search stream.
func NewSearchStream[T any](config SearchStreamConfig[T]) (*SearchStream[T], error) {
	if config.Search == nil {
		return nil, ErrNilSearch
	}
	if config.Debounce <= 0 {
		config.Debounce = 300 * time.Millisecond
	}
	if config.MinQueryLength == 0 {
		config.MinQueryLength = 2
	} else if config.MinQueryLength < 0 {
		config.MinQueryLength = 0
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &SearchStream[T]{
		config:  config,
		results: NewChannel[[]T](),
		loading: NewChannel[bool](),
		errs:    NewChannel[error](),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Search feeds a query into the debounced pipeline. A call within the
// debounce window supersedes the previous one.
func (s *SearchStream[T]) Search(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return
	}

	s.timerGen++
	gen := s.timerGen

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.config.Debounce, func() {
		s.run(gen, query)
	})
}

func (s *SearchStream[T]) run(gen uint64, query string) {
	s.mu.Lock()
	if s.destroyed || gen != s.timerGen {
		// Superseded while debouncing.
		s.mu.Unlock()
		return
	}
	// Gates come before the query adopts a dispatch generation: a query
	// that never dispatches must not supersede one already in flight.
	if s.hasLastQuery && query == s.lastQuery {
		// Unchanged consecutive query; nothing to do.
		s.mu.Unlock()
		return
	}
	if len(query) < s.config.MinQueryLength {
		s.mu.Unlock()
		return
	}
	s.dispatchGen++
	dispatch := s.dispatchGen
	s.lastQuery = query
	s.hasLastQuery = true
	s.mu.Unlock()

	_ = s.loading.Publish(true)

	items, err := s.config.Search(s.ctx, query)

	s.mu.Lock()
	superseded := s.destroyed || dispatch != s.dispatchGen
	s.mu.Unlock()

	if superseded {
		// A newer query is in flight or settled; discard this result.
		// The newer generation owns the loading state.
		return
	}

	if err != nil {
		s.config.Logger.Warn(s.ctx, "search failed",
			observe.Field{Key: "query", Value: query},
			observe.Field{Key: "error", Value: err.Error()},
		)
		if s.config.Hub != nil && s.config.Name != "" {
			s.config.Hub.EmitError(s.config.Name, err)
		}
		_ = s.errs.Publish(err)
		_ = s.loading.Publish(false)
		return
	}

	_ = s.results.Publish(items)
	if s.config.Hub != nil && s.config.Name != "" {
		_ = s.config.Hub.Emit(s.config.Name, items)
	}
	_ = s.loading.Publish(false)
}

// Results returns the channel of settled search results.
func (s *SearchStream[T]) Results() *Channel[[]T] {
	return s.results
}

// Loading returns the channel of loading-state transitions.
func (s *SearchStream[T]) Loading() *Channel[bool] {
	return s.loading
}

// Errors returns the channel of search failures.
func (s *SearchStream[T]) Errors() *Channel[error] {
	return s.errs
}

// Destroy cancels any pending debounce and in-flight delivery and closes
// the stream's channels. Idempotent.
func (s *SearchStream[T]) Destroy() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.destroyed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	s.cancel()
	s.results.Close()
	s.loading.Close()
	s.errs.Close()
}
