// Package otel 封装上下文组装引擎使用的追踪、指标与日志。
//
// 引擎内部只依赖这里的 Tracer、Metrics、Logger 接口；
// Provider 决定它们背后是 OpenTelemetry SDK 还是空实现。
package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer 创建组装各阶段的 Span。
type Tracer interface {
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
}

// Span 是一次阶段执行的追踪记录。
type Span interface {
	End()
	SetAttributes(attrs ...attribute.KeyValue)
	AddEvent(name string, attrs ...attribute.KeyValue)
	RecordError(err error)
	SetStatus(code StatusCode, description string)
	SpanContext() SpanContext
}

// SpanContext 是 Span 的标识，未采样时为空。
type SpanContext struct {
	TraceID string
	SpanID  string
}

// StatusCode 是 Span 的结束状态。
type StatusCode int

const (
	StatusUnset StatusCode = iota
	StatusOK
	StatusError
)

// SpanKind 区分 Span 在调用链中的角色。
// 引擎只产生三种：内部阶段、HTTP 入口、对候选来源的调用。
type SpanKind int

const (
	SpanKindInternal SpanKind = iota
	SpanKindServer
	SpanKindClient
)

var spanKinds = map[SpanKind]trace.SpanKind{
	SpanKindInternal: trace.SpanKindInternal,
	SpanKindServer:   trace.SpanKindServer,
	SpanKindClient:   trace.SpanKindClient,
}

var statusCodes = map[StatusCode]codes.Code{
	StatusUnset: codes.Unset,
	StatusOK:    codes.Ok,
	StatusError: codes.Error,
}

type spanConfig struct {
	kind  SpanKind
	attrs []attribute.KeyValue
}

// SpanOption 配置新建的 Span。
type SpanOption func(*spanConfig)

// WithSpanKind 设置 Span 角色，默认 SpanKindInternal。
func WithSpanKind(kind SpanKind) SpanOption {
	return func(c *spanConfig) { c.kind = kind }
}

// WithAttributes 在 Span 创建时附加属性。
func WithAttributes(attrs ...attribute.KeyValue) SpanOption {
	return func(c *spanConfig) { c.attrs = append(c.attrs, attrs...) }
}

// Fail 记录错误并将 Span 标记为失败。err 为 nil 时不做任何事。
func Fail(span Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(StatusError, err.Error())
}

// OTelTracer 基于 OpenTelemetry SDK 的 Tracer。
type OTelTracer struct {
	tracer trace.Tracer
}

// NewTracer 包装一个 trace.Tracer。
func NewTracer(tracer trace.Tracer) *OTelTracer {
	return &OTelTracer{tracer: tracer}
}

// NewTracerFromGlobal 从全局 TracerProvider 获取 Tracer。
func NewTracerFromGlobal(name string) *OTelTracer {
	return NewTracer(otel.Tracer(name))
}

// Start 开始一个 Span。
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span) {
	var cfg spanConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	kind, ok := spanKinds[cfg.kind]
	if !ok {
		kind = trace.SpanKindInternal
	}

	ctx, span := t.tracer.Start(ctx, name,
		trace.WithSpanKind(kind),
		trace.WithAttributes(cfg.attrs...),
	)
	return ctx, otelSpan{span}
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) End() { s.span.End() }

func (s otelSpan) SetAttributes(attrs ...attribute.KeyValue) { s.span.SetAttributes(attrs...) }

func (s otelSpan) AddEvent(name string, attrs ...attribute.KeyValue) {
	s.span.AddEvent(name, trace.WithAttributes(attrs...))
}

func (s otelSpan) RecordError(err error) { s.span.RecordError(err) }

func (s otelSpan) SetStatus(code StatusCode, description string) {
	s.span.SetStatus(statusCodes[code], description)
}

func (s otelSpan) SpanContext() SpanContext {
	sc := s.span.SpanContext()
	if !sc.IsValid() {
		return SpanContext{}
	}
	return SpanContext{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NoopTracer 在追踪关闭时使用。
type NoopTracer struct{}

// NewNoopTracer 创建 NoopTracer。
func NewNoopTracer() *NoopTracer {
	return &NoopTracer{}
}

// Start 原样返回 ctx。
func (NoopTracer) Start(ctx context.Context, _ string, _ ...SpanOption) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End()                                   {}
func (noopSpan) SetAttributes(...attribute.KeyValue)    {}
func (noopSpan) AddEvent(string, ...attribute.KeyValue) {}
func (noopSpan) RecordError(error)                      {}
func (noopSpan) SetStatus(StatusCode, string)           {}
func (noopSpan) SpanContext() SpanContext               { return SpanContext{} }

var (
	_ Tracer = (*OTelTracer)(nil)
	_ Tracer = (*NoopTracer)(nil)
	_ Span   = otelSpan{}
	_ Span   = noopSpan{}
)
