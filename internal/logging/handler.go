// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

// Package logging builds the process-wide slog logger: json or text
// output, service identity on every record, and OpenTelemetry trace
// context when the calling context carries a span.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// handler decorates an inner slog.Handler with service identity and
// trace correlation attributes.
type handler struct {
	inner   slog.Handler
	service string
	version string
}

func (h *handler) Handle(ctx context.Context, r slog.Record) error {
	attrs := []slog.Attr{
		slog.String("service", h.service),
		slog.String("version", h.version),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		attrs = append(attrs, slog.String("trace_id", sc.TraceID().String()))
		if sc.HasSpanID() {
			attrs = append(attrs, slog.String("span_id", sc.SpanID().String()))
		}
	}
	r.AddAttrs(attrs...)

	//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
	return h.inner.Handle(ctx, r)
}

func (h *handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &handler{inner: h.inner.WithAttrs(attrs), service: h.service, version: h.version}
}

func (h *handler) WithGroup(name string) slog.Handler {
	return &handler{inner: h.inner.WithGroup(name), service: h.service, version: h.version}
}

// New builds a logger for the given service identity. format selects
// "text" or "json" output; anything else means json. A nil writer
// defaults to stderr.
func New(service, version, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	var inner slog.Handler
	if format == "text" {
		inner = slog.NewTextHandler(w, opts)
	} else {
		inner = slog.NewJSONHandler(w, opts)
	}

	return slog.New(&handler{inner: inner, service: service, version: version})
}
