// Package observe provides observability for toolkit operations:
// OpenTelemetry tracing and metrics, structured JSON logging, and a
// middleware that instruments wrapped asynchronous operations.
package observe
