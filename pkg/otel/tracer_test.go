package otel_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/easyops/contextengine/pkg/otel"
)

func TestNoopTracer(t *testing.T) {
	tracer := otel.NewNoopTracer()
	ctx, span := tracer.Start(context.Background(), "test-span")
	if ctx == nil || span == nil {
		t.Fatal("expected non-nil context and span")
	}

	// 空实现的所有方法都不应 panic
	span.SetStatus(otel.StatusOK, "ok")
	span.AddEvent("event-name")
	span.RecordError(errors.New("test error"))
	span.End()

	if sc := span.SpanContext(); sc.TraceID != "" {
		t.Fatal("expected empty trace ID for noop span")
	}
}

func TestOTelTracer_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	tracer := otel.NewTracer(tp.Tracer("test"))

	ctx, parent := tracer.Start(context.Background(), "context.assemble",
		otel.WithAttributes(otel.ContextMaxTokens(1000), otel.ContextProject("p1")),
	)
	_, child := tracer.Start(ctx, "context.retrieve", otel.WithSpanKind(otel.SpanKindClient))
	otel.Fail(child, errors.New("boom"))
	child.End()
	parent.SetStatus(otel.StatusOK, "")
	parent.End()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	retrieve, assemble := spans[0], spans[1]
	if retrieve.Name() != "context.retrieve" || retrieve.SpanKind() != trace.SpanKindClient {
		t.Errorf("unexpected child span: %s %v", retrieve.Name(), retrieve.SpanKind())
	}
	if retrieve.Parent().SpanID() != assemble.SpanContext().SpanID() {
		t.Error("retrieve span should be a child of assemble")
	}
	if retrieve.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", retrieve.Status().Code)
	}
	if assemble.Status().Code != codes.Ok {
		t.Errorf("expected ok status, got %v", assemble.Status().Code)
	}

	var gotProject bool
	for _, kv := range assemble.Attributes() {
		if string(kv.Key) == otel.AttrContextProject && kv.Value.AsString() == "p1" {
			gotProject = true
		}
	}
	if !gotProject {
		t.Error("expected project attribute on assemble span")
	}

	if parent.SpanContext().TraceID == "" {
		t.Error("expected trace ID from sdk span")
	}
}

func TestFail(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	tracer := otel.NewTracer(tp.Tracer("test"))

	_, ok := tracer.Start(context.Background(), "ok")
	otel.Fail(ok, nil)
	ok.End()

	_, failed := tracer.Start(context.Background(), "failed")
	otel.Fail(failed, errors.New("retrieval timed out"))
	failed.End()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Unset {
		t.Errorf("nil error should leave status unset, got %v", spans[0].Status().Code)
	}
	if spans[1].Status().Code != codes.Error || spans[1].Status().Description != "retrieval timed out" {
		t.Errorf("unexpected status %+v", spans[1].Status())
	}
	if len(spans[1].Events()) != 1 {
		t.Errorf("expected one exception event, got %d", len(spans[1].Events()))
	}
}
