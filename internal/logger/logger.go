package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Options picks the output format and minimum level.
type Options struct {
	JSON  bool
	Level slog.Level
}

// FromEnv resolves Options for the running process. Clusters and the dev/prod
// environments log JSON at info; a workstation gets highlighted text at
// debug. LOG_FORMAT=json|text and LOG_LEVEL override either default.
func FromEnv() Options {
	_, inCluster := os.LookupEnv("KUBERNETES_SERVICE_HOST")
	env := os.Getenv("ENV")

	opts := Options{Level: slog.LevelDebug}
	if inCluster || env == "prod" || env == "dev" {
		opts = Options{JSON: true, Level: slog.LevelInfo}
	}

	switch strings.ToLower(os.Getenv("LOG_FORMAT")) {
	case "json":
		opts.JSON = true
	case "text":
		opts.JSON = false
	}

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(raw)); err == nil {
			opts.Level = level
		}
	}
	return opts
}

func New() *slog.Logger {
	return NewWithOptions(os.Stdout, FromEnv())
}

// NewWithOptions writes to w. Every record logged with a span in its context
// carries trace_id and span_id.
func NewWithOptions(w io.Writer, opts Options) *slog.Logger {
	var base slog.Handler
	if opts.JSON {
		base = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: opts.Level, AddSource: true})
	} else {
		base = highlight{inner: slog.NewTextHandler(w, &slog.HandlerOptions{Level: opts.Level})}
	}
	return slog.New(spanAttrs{inner: base})
}

// NewWithServiceContext tags every record with the service identity.
func NewWithServiceContext(serviceName, version string) *slog.Logger {
	return New().With(
		slog.String("service", serviceName),
		slog.String("version", version),
		slog.String("environment", os.Getenv("ENV")),
	)
}

// NewDiscard returns a logger that drops everything.
func NewDiscard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
)

// highlight colors warning and error messages for terminals.
type highlight struct {
	inner slog.Handler
}

func (h highlight) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h highlight) Handle(ctx context.Context, r slog.Record) error {
	color := ""
	switch {
	case r.Level >= slog.LevelError:
		color = ansiRed
	case r.Level >= slog.LevelWarn:
		color = ansiYellow
	}
	if color == "" {
		return h.inner.Handle(ctx, r)
	}

	colored := slog.NewRecord(r.Time, r.Level, color+r.Message+ansiReset, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		colored.AddAttrs(a)
		return true
	})
	return h.inner.Handle(ctx, colored)
}

func (h highlight) WithAttrs(attrs []slog.Attr) slog.Handler {
	return highlight{inner: h.inner.WithAttrs(attrs)}
}

func (h highlight) WithGroup(name string) slog.Handler {
	return highlight{inner: h.inner.WithGroup(name)}
}

// spanAttrs copies the OTel span identity from ctx onto the record.
type spanAttrs struct {
	inner slog.Handler
}

func (h spanAttrs) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h spanAttrs) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.inner.Handle(ctx, r)
}

func (h spanAttrs) WithAttrs(attrs []slog.Attr) slog.Handler {
	return spanAttrs{inner: h.inner.WithAttrs(attrs)}
}

func (h spanAttrs) WithGroup(name string) slog.Handler {
	return spanAttrs{inner: h.inner.WithGroup(name)}
}
