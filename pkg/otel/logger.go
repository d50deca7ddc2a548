package otel

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Logger 是引擎使用的结构化日志接口，参数为交替的键值对。
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	// WithContext 附加 ctx 中当前 Span 的 trace_id 和 span_id。
	WithContext(ctx context.Context) Logger
	WithFields(fields map[string]any) Logger
}

// SlogLogger 把 Logger 转到 slog。
type SlogLogger struct {
	*slog.Logger
	withTrace bool
}

// NewLogger 按 cfg 创建写到 w 的 text 或 json 日志。
func NewLogger(cfg LoggingConfig, w io.Writer) *SlogLogger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	}
	return &SlogLogger{Logger: slog.New(h), withTrace: cfg.IncludeTraceID}
}

func (l *SlogLogger) WithContext(ctx context.Context) Logger {
	if !l.withTrace || ctx == nil {
		return l
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	return &SlogLogger{
		Logger:    l.With("trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String()),
		withTrace: l.withTrace,
	}
}

func (l *SlogLogger) WithFields(fields map[string]any) Logger {
	kv := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return &SlogLogger{Logger: l.With(kv...), withTrace: l.withTrace}
}

// NoopLogger 丢弃所有日志。
type NoopLogger struct{}

func NewNoopLogger() *NoopLogger { return &NoopLogger{} }

func (NoopLogger) Debug(string, ...any)                {}
func (NoopLogger) Info(string, ...any)                 {}
func (NoopLogger) Warn(string, ...any)                 {}
func (NoopLogger) Error(string, ...any)                {}
func (l NoopLogger) WithContext(context.Context) Logger { return l }
func (l NoopLogger) WithFields(map[string]any) Logger   { return l }

var (
	_ Logger = (*SlogLogger)(nil)
	_ Logger = (*NoopLogger)(nil)
)
