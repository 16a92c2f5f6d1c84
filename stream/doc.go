// Package stream provides named publish/subscribe channels and two
// higher-order streams built on them: a polling DataStreamer that merges
// periodic fetches into a keyed snapshot, and a debounced SearchStream
// with last-query-wins cancellation.
//
// A Channel broadcasts each published value to every current subscriber,
// in publish order, exactly once per subscriber, with no replay of values
// published before subscription. Subscriptions are removed by handle
// identity. The Hub registers channels by name and mirrors every event
// onto a global channel as a tagged Envelope.
package stream
