// Package logging provides structured logging with OpenTelemetry trace context.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// traceHandler adds trace context to every record. Trace ids belong at the
// top level of the entry, so the handler keeps the ungrouped root and replays
// the recorded WithAttrs/WithGroup calls after attaching them.
type traceHandler struct {
	root    slog.Handler
	handler slog.Handler
	ops     []handlerOp
}

// handlerOp is one recorded WithAttrs (group empty) or WithGroup call.
type handlerOp struct {
	group string
	attrs []slog.Attr
}

func (op handlerOp) apply(h slog.Handler) slog.Handler {
	if op.group != "" {
		return h.WithGroup(op.group)
	}
	return h.WithAttrs(op.attrs)
}

func newTraceHandler(root slog.Handler) *traceHandler {
	return &traceHandler{root: root, handler: root}
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	spanCtx := trace.SpanContextFromContext(ctx)
	var ids []slog.Attr
	if spanCtx.HasTraceID() {
		ids = append(ids, slog.String("trace_id", spanCtx.TraceID().String()))
	}
	if spanCtx.HasSpanID() {
		ids = append(ids, slog.String("span_id", spanCtx.SpanID().String()))
	}
	if len(ids) == 0 {
		return h.handler.Handle(ctx, r)
	}

	target := h.root.WithAttrs(ids)
	for _, op := range h.ops {
		target = op.apply(target)
	}
	return target.Handle(ctx, r)
}

func (h *traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return h.with(handlerOp{attrs: slices.Clone(attrs)})
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.with(handlerOp{group: name})
}

func (h *traceHandler) with(op handlerOp) *traceHandler {
	ops := make([]handlerOp, len(h.ops), len(h.ops)+1)
	copy(ops, h.ops)
	return &traceHandler{
		root:    h.root,
		handler: op.apply(h.handler),
		ops:     append(ops, op),
	}
}

// Options configures Setup.
// Format is "json" or "text" (json when empty). Level is a slog level name
// (debug when empty). A nil Writer means os.Stderr.
type Options struct {
	Service string
	Version string
	Format  string
	Level   string
	Writer  io.Writer
}

// Setup creates a configured slog.Logger.
func Setup(opts Options) (*slog.Logger, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var base slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		base = slog.NewTextHandler(w, handlerOpts)
	} else {
		base = slog.NewJSONHandler(w, handlerOpts)
	}

	base = base.WithAttrs([]slog.Attr{
		slog.String("service", opts.Service),
		slog.String("version", opts.Version),
	})
	return slog.New(newTraceHandler(base)), nil
}

// ParseLevel accepts debug, info, warn and error in any case, with an
// optional offset such as "info+2". Empty means debug.
func ParseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelDebug, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}
	return level, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
