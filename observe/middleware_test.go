package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestMiddleware(t *testing.T) (*Middleware, *tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()

	spanRecorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spanRecorder))
	tracer := newTracer(tp.Tracer("test"))

	metricReader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(metricReader))
	metrics, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	return NewMiddleware(tracer, metrics, &noopLogger{}), spanRecorder, metricReader
}

// TestMiddleware_SuccessPath verifies successful execution records telemetry.
func TestMiddleware_SuccessPath(t *testing.T) {
	mw, spanRecorder, metricReader := newTestMiddleware(t)

	meta := OpMeta{Component: "cache", Name: "load"}
	called := false

	wrapped := mw.Wrap(meta, func(ctx context.Context) error {
		called = true
		return nil
	})

	if err := wrapped(context.Background()); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !called {
		t.Fatal("wrapped function was not invoked")
	}

	spans := spanRecorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "async.op.cache.load" {
		t.Errorf("expected span name 'async.op.cache.load', got %q", spans[0].Name())
	}

	var rm metricdata.ResourceMetrics
	if err := metricReader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	if findMetric(rm, "async.op.total") == nil {
		t.Error("async.op.total metric not found")
	}
}

// TestMiddleware_ErrorPath verifies failed execution records error telemetry
// and propagates the error unchanged.
func TestMiddleware_ErrorPath(t *testing.T) {
	mw, spanRecorder, metricReader := newTestMiddleware(t)

	testErr := errors.New("execution failed")
	wrapped := mw.Wrap(OpMeta{Name: "error_op"}, func(ctx context.Context) error {
		return testErr
	})

	if err := wrapped(context.Background()); err != testErr {
		t.Fatalf("expected original error, got: %v", err)
	}

	spans := spanRecorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if len(spans[0].Events()) == 0 {
		t.Error("expected recorded error event on span")
	}

	var rm metricdata.ResourceMetrics
	if err := metricReader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	if findMetric(rm, "async.op.errors") == nil {
		t.Error("async.op.errors metric not found")
	}
}

// TestMiddleware_LogsFailure verifies failures are logged with op context.
func TestMiddleware_LogsFailure(t *testing.T) {
	spanRecorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spanRecorder))
	tracer := newTracer(tp.Tracer("test"))

	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	mw := NewMiddleware(tracer, NopMetrics(), logger)

	wrapped := mw.Wrap(OpMeta{Component: "stream", Name: "refresh"}, func(ctx context.Context) error {
		return errors.New("upstream down")
	})
	_ = wrapped(context.Background())

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v\nOutput: %s", err, buf.String())
	}

	if v, ok := logEntry["level"].(string); !ok || v != "error" {
		t.Errorf("expected level='error', got %v", logEntry["level"])
	}
	if v, ok := logEntry["op.id"].(string); !ok || v != "stream.refresh" {
		t.Errorf("expected op.id='stream.refresh', got %v", logEntry["op.id"])
	}
	if v, ok := logEntry["error"].(string); !ok || v != "upstream down" {
		t.Errorf("expected error='upstream down', got %v", logEntry["error"])
	}
}

// TestMiddlewareFromObserver verifies the convenience constructor.
func TestMiddlewareFromObserver(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "test-service"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer obs.Shutdown(context.Background())

	mw, err := MiddlewareFromObserver(obs)
	if err != nil {
		t.Fatalf("MiddlewareFromObserver() error = %v", err)
	}

	wrapped := mw.Wrap(OpMeta{Name: "noop"}, func(ctx context.Context) error { return nil })
	if err := wrapped(context.Background()); err != nil {
		t.Errorf("wrapped() error = %v", err)
	}

	if _, err := MiddlewareFromObserver(nil); err != ErrNilObserver {
		t.Errorf("MiddlewareFromObserver(nil) = %v, want ErrNilObserver", err)
	}
}
