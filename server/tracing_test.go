package server

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/blockberries/didrpc/types"
)

func newRecordingTracer() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	return rec, tp
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestServer_SpanPerQuery(t *testing.T) {
	rec, tp := newRecordingTracer()
	srv := New(newScenarioLedger(), WithTracer(tp.Tracer("test")))

	if _, err := srv.ReadAttribute(context.Background(), alice, types.Bytes("email"), types.Best()); err != nil {
		t.Fatal(err)
	}

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name() != spanReadAttribute {
		t.Errorf("span name: got %q", span.Name())
	}
	if v, ok := spanAttr(span, "did.block"); !ok || v.AsString() != block200.String() {
		t.Errorf("did.block: got %v", v.AsString())
	}
	if v, ok := spanAttr(span, "did.best"); !ok || !v.AsBool() {
		t.Error("expected did.best=true")
	}
	if v, ok := spanAttr(span, "did.found"); !ok || !v.AsBool() {
		t.Error("expected did.found=true")
	}
	if span.Status().Code == codes.Error {
		t.Error("unexpected error status")
	}
}

func TestServer_SpanRecordsFailure(t *testing.T) {
	rec, tp := newRecordingTracer()
	srv := New(&testLedger{err: errors.New("state unavailable")}, WithTracer(tp.Tracer("test")))

	if _, err := srv.ReadAttribute(context.Background(), alice, types.Bytes("email"), types.At(block10)); err == nil {
		t.Fatal("expected error")
	}

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if got := spans[0].Status(); got.Code != codes.Error || got.Description != "Unable to get value." {
		t.Errorf("status: got %+v", got)
	}
	if len(spans[0].Events()) == 0 {
		t.Error("expected the error to be recorded as a span event")
	}
}
