package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"lending-library/internal/handler/http/requestid"
)

/* ──────────────────────────────── 1. constructors ──────────────────────────────── */

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewLogger_UsesEnvLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	logger := NewLogger()
	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("book added", slog.String("isbn", "123-456-789-0"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "book added", entry["msg"])
	assert.Equal(t, "123-456-789-0", entry["isbn"])
}

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTextLogger(&buf, slog.LevelWarn)

	logger.Info("hidden")
	logger.Warn("slow query", slog.Int("ms", 900))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=\"slow query\"")
	assert.Contains(t, out, "ms=900")
}

/* ──────────────────────────────── 2. context ──────────────────────────────── */

func TestWithRequestID(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})

	tests := []struct {
		name        string
		ctx         context.Context
		wantRequest any
		wantTrace   any
	}{
		{"empty", context.Background(), nil, nil},
		{"request id only", requestid.WithRequestID(context.Background(), "req-1"), "req-1", nil},
		{
			"request and trace id",
			trace.ContextWithSpanContext(requestid.WithRequestID(context.Background(), "req-2"), sc),
			"req-2", "4bf92f3577b34da6a3ce929d0e0e4736",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			WithRequestID(tt.ctx, NewJSONLogger(&buf, slog.LevelInfo)).Info("x")

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.wantRequest, entry["request_id"])
			assert.Equal(t, tt.wantTrace, entry["trace_id"])
		})
	}
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))

	logger := NewJSONLogger(&bytes.Buffer{}, slog.LevelInfo)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}
