package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestNewWithOptions_AddsSpanIDs(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions(&buf, Options{JSON: true, Level: slog.LevelInfo})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	log.InfoContext(ctx, "attempt recorded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
}

func TestNewWithOptions_NoSpan(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions(&buf, Options{JSON: true, Level: slog.LevelInfo})

	log.Info("no span here")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "trace_id")
}

func TestNewWithOptions_Level(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions(&buf, Options{JSON: true, Level: slog.LevelWarn})

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestHighlight(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions(&buf, Options{Level: slog.LevelDebug})

	// The text handler quotes control characters, so escapes show up escaped.
	log.Info("plain")
	assert.NotContains(t, buf.String(), `\x1b[`)

	buf.Reset()
	log.Warn("slow")
	assert.Contains(t, buf.String(), `\x1b[33mslow\x1b[0m`)

	buf.Reset()
	log.Error("broken")
	assert.Contains(t, buf.String(), `\x1b[31mbroken\x1b[0m`)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("KUBERNETES_SERVICE_HOST", "")
	require.NoError(t, os.Unsetenv("KUBERNETES_SERVICE_HOST"))

	t.Run("Workstation", func(t *testing.T) {
		t.Setenv("ENV", "local")
		t.Setenv("LOG_FORMAT", "")
		t.Setenv("LOG_LEVEL", "")

		assert.Equal(t, Options{Level: slog.LevelDebug}, FromEnv())
	})

	t.Run("Production", func(t *testing.T) {
		t.Setenv("ENV", "prod")
		t.Setenv("LOG_FORMAT", "")
		t.Setenv("LOG_LEVEL", "")

		assert.Equal(t, Options{JSON: true, Level: slog.LevelInfo}, FromEnv())
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("ENV", "prod")
		t.Setenv("LOG_FORMAT", "text")
		t.Setenv("LOG_LEVEL", "warn")

		assert.Equal(t, Options{Level: slog.LevelWarn}, FromEnv())
	})

	t.Run("BadLevelIgnored", func(t *testing.T) {
		t.Setenv("ENV", "local")
		t.Setenv("LOG_FORMAT", "json")
		t.Setenv("LOG_LEVEL", "loud")

		assert.Equal(t, Options{JSON: true, Level: slog.LevelDebug}, FromEnv())
	})
}
