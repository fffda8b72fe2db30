// Package observability configures the process-wide slog logger and the
// OpenTelemetry tracer provider used to correlate log lines.
package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Instrument installs the default logger writing to stdout at level in the
// given format (text or json), a tracer provider that assigns span ids, and
// the W3C trace context propagator. The returned func flushes the provider.
func Instrument(level slog.Level, logFormat string) (func(context.Context) error, error) {
	handler, err := NewHandler(os.Stdout, level, logFormat)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(slog.New(handler))

	// No exporter is configured; spans only feed trace_id/span_id into logs.
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// NewHandler creates a text or json handler on w that tags records with the
// active span.
func NewHandler(w io.Writer, level slog.Level, logFormat string) (slog.Handler, error) {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	switch strings.ToLower(logFormat) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unsupported log format %q (expected: json, text)", logFormat)
	}

	return spanHandler{next: handler}, nil
}
