// Package cache memoizes the results of asynchronous operations per key
// for a bounded lifetime.
//
// It provides a generic TTL cache with single-flight de-duplication of
// concurrent misses, SHA-256-based key derivation from operation identity
// and arguments, and TTL policies with clamping.
package cache
