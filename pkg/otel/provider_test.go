package otel

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewProvider_Disabled(t *testing.T) {
	var buf bytes.Buffer
	p, err := newProvider(context.Background(), Config{}, &buf)
	if err != nil {
		t.Fatalf("newProvider: %v", err)
	}
	defer p.Shutdown(context.Background())

	if _, ok := p.Tracer().(*NoopTracer); !ok {
		t.Errorf("expected noop tracer, got %T", p.Tracer())
	}
	if _, ok := p.Metrics().(*NoopMetrics); !ok {
		t.Errorf("expected noop metrics, got %T", p.Metrics())
	}

	p.Logger().Info("ready", "component", "test")
	if !strings.Contains(buf.String(), "component=test") {
		t.Errorf("logger should always be enabled, got %q", buf.String())
	}
}

func TestNewProvider_NoneExporters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Tracing.Enabled = true
	cfg.Tracing.Exporter = ExporterNone
	cfg.Metrics.Enabled = true
	cfg.Metrics.Exporter = ExporterNone

	p, err := newProvider(context.Background(), cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("newProvider: %v", err)
	}

	if _, ok := p.Tracer().(*OTelTracer); !ok {
		t.Errorf("expected otel tracer, got %T", p.Tracer())
	}
	if _, ok := p.Metrics().(*OTelMetrics); !ok {
		t.Errorf("expected otel metrics, got %T", p.Metrics())
	}

	_, span := p.Tracer().Start(context.Background(), "probe")
	if span.SpanContext().TraceID == "" {
		t.Error("expected sampled span with trace id")
	}
	span.End()

	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tracing.SampleRate = 2

	if _, err := newProvider(context.Background(), cfg, &bytes.Buffer{}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestGlobalProvider(t *testing.T) {
	p, err := newProvider(context.Background(), Config{}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("newProvider: %v", err)
	}
	SetGlobal(p)
	t.Cleanup(func() {
		globalMu.Lock()
		globalProvider, globalTracer = nil, nil
		globalMu.Unlock()
	})

	if GetLogger() != p.Logger() {
		t.Error("GetLogger should return the global provider's logger")
	}
	if GetMetrics() != p.Metrics() {
		t.Error("GetMetrics should return the global provider's metrics")
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LoggingConfig
		logDbg  bool
		wantOut bool
		json    bool
	}{
		{"text info drops debug", LoggingConfig{Level: "info", Format: "text"}, true, false, false},
		{"debug level keeps debug", LoggingConfig{Level: "debug"}, true, true, false},
		{"json format", LoggingConfig{Level: "info", Format: "JSON"}, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.cfg, &buf).WithFields(map[string]any{"assembly_id": "a1"})

			if tt.logDbg {
				logger.Debug("scored", "count", 3)
			} else {
				logger.Info("scored", "count", 3)
			}

			if got := buf.Len() > 0; got != tt.wantOut {
				t.Fatalf("output present = %v, want %v (%q)", got, tt.wantOut, buf.String())
			}
			if !tt.wantOut {
				return
			}

			if tt.json {
				var rec map[string]any
				if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
					t.Fatalf("expected json output: %v", err)
				}
				if rec["assembly_id"] != "a1" {
					t.Errorf("missing field: %v", rec)
				}
			} else if !strings.Contains(buf.String(), "assembly_id=a1") {
				t.Errorf("missing field: %q", buf.String())
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
