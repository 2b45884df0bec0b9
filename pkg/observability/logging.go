package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level   string // "debug", "info", "warn", "error"
	Format  string // "json", "text"
	Service string
	// Output defaults to stdout.
	Output io.Writer
}

// InitLogger builds the process logger and installs it as the default.
// Records logged with a context carrying a valid span context get trace_id and
// span_id attributes so log lines can be joined to traces.
func InitLogger(cfg LogConfig) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var base slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		base = slog.NewJSONHandler(out, opts)
	} else {
		base = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(&traceHandler{next: base})
	if cfg.Service != "" {
		logger = logger.With(slog.String("service", cfg.Service))
	}
	slog.SetDefault(logger)
	return logger
}

// parseLevel accepts anything slog.Level.UnmarshalText does ("info",
// "WARN", "debug-4") plus "warning". Unparseable input means info.
func parseLevel(level string) slog.Level {
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

type traceHandler struct {
	next slog.Handler
}

func (h *traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.next.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{next: h.next.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{next: h.next.WithGroup(name)}
}
