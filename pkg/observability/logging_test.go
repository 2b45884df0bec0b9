package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"debug-4", slog.LevelDebug - 4},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	return record
}

func TestInitLoggerJSONCarriesService(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{Level: "debug", Format: "JSON", Service: "mortgage-advisor", Output: &buf})

	logger.Info("recommendations generated", "application_id", "app-1")

	record := decodeLine(t, &buf)
	if record["service"] != "mortgage-advisor" {
		t.Errorf("service = %v, want mortgage-advisor", record["service"])
	}
	if record["application_id"] != "app-1" {
		t.Errorf("application_id = %v, want app-1", record["application_id"])
	}
	if _, ok := record["trace_id"]; ok {
		t.Error("trace_id set without a span in context")
	}
}

func TestInitLoggerAddsTraceCorrelation(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{Format: "json", Output: &buf})

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x0a, 0x0b},
		SpanID:     trace.SpanID{0x01},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	logger.With("component", "relay").InfoContext(ctx, "outbox relayed")

	record := decodeLine(t, &buf)
	if record["trace_id"] != sc.TraceID().String() {
		t.Errorf("trace_id = %v, want %s", record["trace_id"], sc.TraceID())
	}
	if record["span_id"] != sc.SpanID().String() {
		t.Errorf("span_id = %v, want %s", record["span_id"], sc.SpanID())
	}
	if record["component"] != "relay" {
		t.Errorf("component = %v, want relay", record["component"])
	}
}

func TestInitLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{Level: "warn", Output: &buf})

	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info record written at warn level: %q", buf.String())
	}

	logger.Warn("kept")
	if !strings.Contains(buf.String(), "msg=kept") {
		t.Errorf("text record missing, got %q", buf.String())
	}
}

func TestInitLoggerSetsDefault(t *testing.T) {
	logger := InitLogger(LogConfig{Output: &bytes.Buffer{}})
	if logger.Handler() != slog.Default().Handler() {
		t.Error("InitLogger did not set the default logger")
	}
}
