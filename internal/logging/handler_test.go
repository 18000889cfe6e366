package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "failed to parse JSON: %s", buf.String())
	return entry
}

func TestSetupJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(Options{Service: "neatauthctl", Version: "1.0.0", Format: "json", Writer: &buf})
	require.NoError(t, err)

	logger.Info("test message")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "neatauthctl", entry["service"])
	assert.Equal(t, "1.0.0", entry["version"])
	assert.NotContains(t, entry, "trace_id")
}

func TestSetupTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(Options{Service: "neatauthctl", Format: "TEXT", Writer: &buf})
	require.NoError(t, err)

	logger.Info("test message")
	assert.Contains(t, buf.String(), "msg=\"test message\"")
	assert.Contains(t, buf.String(), "service=neatauthctl")
}

func TestSetupLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(Options{Level: "warn", Writer: &buf})
	require.NoError(t, err)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())
	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")

	_, err = Setup(Options{Level: "verbose"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":       slog.LevelDebug,
		"debug":  slog.LevelDebug,
		"INFO":   slog.LevelInfo,
		"warn":   slog.LevelWarn,
		"error":  slog.LevelError,
		"info+2": slog.LevelInfo + 2,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestHandlerTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(Options{Service: "neatauthctl", Writer: &buf})
	require.NoError(t, err)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	logger.With("identity", "alice").WithGroup("op").InfoContext(ctx, "traced message", "name", "transform")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
	assert.Equal(t, "alice", entry["identity"])
}

func TestHandlerGroupKeepsServiceAndTraceAtTopLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(Options{Service: "neatauthctl", Version: "1.0.0", Writer: &buf})
	require.NoError(t, err)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(),
		trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID}))

	grouped := logger.WithGroup("op").With("name", "transform").WithGroup("genome")
	grouped.InfoContext(ctx, "traced", "nodes", 268)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "neatauthctl", entry["service"])
	assert.Equal(t, "1.0.0", entry["version"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])

	op, ok := entry["op"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "transform", op["name"])
	assert.NotContains(t, op, "trace_id")
	assert.NotContains(t, op, "service")
	genome, ok := op["genome"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 268, genome["nodes"])

	buf.Reset()
	grouped.Info("untraced", "nodes", 1)
	entry = decodeLine(t, &buf)
	assert.Equal(t, "neatauthctl", entry["service"])
	assert.NotContains(t, entry, "trace_id")
	op, ok = entry["op"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, op, "genome")
}

func TestLogErrorWithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("GENOME_NOT_FOUND").In("storage").With("identity", "alice").Errorf("no genome")
	LogError(context.Background(), logger, "transform failed", err)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "transform failed", entry["msg"])
	assert.Equal(t, "GENOME_NOT_FOUND", entry["code"])
	assert.Equal(t, "storage", entry["domain"])
	ctx, ok := entry["context"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", ctx["identity"])
}

func TestLogErrorWithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	LogError(context.Background(), logger, "operation failed", errors.New("standard error"))

	entry := decodeLine(t, &buf)
	assert.True(t, strings.Contains(entry["error"].(string), "standard error"))
	assert.NotContains(t, entry, "code")
}


func TestDiscard(t *testing.T) {
	Discard().Error("nothing happens")
}
