// Package pool bounds the number of simultaneously in-flight asynchronous
// operations.
//
// A Pool is a counting semaphore: Acquire blocks until one of the
// configured slots frees, Release returns it. Execute and the generic Run
// and RunAll helpers handle acquire/release around a task, releasing the
// slot on success and failure alike so a failing task can never deadlock
// the pool. RunAll preserves input order in its results regardless of
// completion order.
//
// The pool imposes no timeout of its own; callers needing one compose
// with resilience.Timeout or a circuit breaker.
package pool
