package stream

import "errors"

// Sentinel errors for stream operations.
var (
	// ErrChannelClosed is returned when publishing to a completed channel.
	ErrChannelClosed = errors.New("stream: channel is closed")

	// ErrHubClosed is returned when using a hub after Close.
	ErrHubClosed = errors.New("stream: hub is closed")

	// ErrNilFetch indicates a DataStreamer was configured without a fetch function.
	ErrNilFetch = errors.New("stream: fetch function is required")

	// ErrNilKey indicates a DataStreamer was configured without a key function.
	ErrNilKey = errors.New("stream: key function is required")

	// ErrNilSearch indicates a SearchStream was configured without a search function.
	ErrNilSearch = errors.New("stream: search function is required")
)
