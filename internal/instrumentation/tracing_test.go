package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// recordSpans installs an in-memory tracer provider for the duration of the test.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithTool("notes_count_tasks").
		WithService(ServiceNoteStore).
		WithOperation(OperationGetNote).
		WithNoteGUID("a1b2c3").
		WithQuery("intitle:Дела created:20260901 -created:20261001").
		WithMonthsBack(1).
		WithRunID("run-1").
		Build()

	if len(attrs) != 7 {
		t.Errorf("expected 7 attributes, got %d", len(attrs))
	}

	attrMap := make(map[string]interface{})
	for _, attr := range attrs {
		attrMap[string(attr.Key)] = attr.Value.AsInterface()
	}

	if attrMap[SpanAttrTool] != "notes_count_tasks" {
		t.Errorf("expected tool 'notes_count_tasks', got %v", attrMap[SpanAttrTool])
	}
	if attrMap[SpanAttrService] != ServiceNoteStore {
		t.Errorf("expected service %q, got %v", ServiceNoteStore, attrMap[SpanAttrService])
	}
	if attrMap[SpanAttrOperation] != OperationGetNote {
		t.Errorf("expected operation %q, got %v", OperationGetNote, attrMap[SpanAttrOperation])
	}
	if attrMap[SpanAttrNoteGUID] != "a1b2c3" {
		t.Errorf("expected note guid 'a1b2c3', got %v", attrMap[SpanAttrNoteGUID])
	}
	if attrMap[SpanAttrMonthsBack] != int64(1) {
		t.Errorf("expected months back 1, got %v", attrMap[SpanAttrMonthsBack])
	}
	if attrMap[SpanAttrRunID] != "run-1" {
		t.Errorf("expected run id 'run-1', got %v", attrMap[SpanAttrRunID])
	}
}

func TestSpanAttributeBuilder_EmptyValues(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithTool("test_tool").
		WithNoteGUID("").
		WithQuery("").
		WithRunID("").
		Build()

	if len(attrs) != 1 {
		t.Errorf("expected 1 attribute (only tool), got %d", len(attrs))
	}
}

func TestStartSpan(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartSpan(context.Background(), "scan.run")
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "scan.run" {
		t.Errorf("expected span name 'scan.run', got %q", spans[0].Name())
	}
}

func TestStartToolSpan(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartToolSpan(context.Background(), "notes_search")
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "tool.notes_search" {
		t.Errorf("expected span name 'tool.notes_search', got %q", spans[0].Name())
	}
	if spans[0].SpanKind() != trace.SpanKindServer {
		t.Errorf("expected server span kind, got %v", spans[0].SpanKind())
	}
}

func TestStartEvernoteSpan(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartEvernoteSpan(context.Background(), ServiceNoteStore, OperationFindNotes)
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "evernote.notestore.find_notes" {
		t.Errorf("expected span name 'evernote.notestore.find_notes', got %q", spans[0].Name())
	}
	if spans[0].SpanKind() != trace.SpanKindClient {
		t.Errorf("expected client span kind, got %v", spans[0].SpanKind())
	}
}

func TestSetSpanError(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartSpan(context.Background(), "test-span")
	SetSpanError(span, nil) // nil error should be safe
	SetSpanError(span, errors.New("test error"))
	span.End()

	got := recorder.Ended()[0]
	if got.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", got.Status().Code)
	}
	if got.Status().Description != "test error" {
		t.Errorf("expected description 'test error', got %q", got.Status().Description)
	}
}

func TestSetSpanSuccess(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartSpan(context.Background(), "test-span")
	SetSpanSuccess(span)
	span.End()

	if code := recorder.Ended()[0].Status().Code; code != codes.Ok {
		t.Errorf("expected ok status, got %v", code)
	}
}

func TestAddSpanEvent(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartSpan(context.Background(), "test-span")
	AddSpanEvent(span, "page_fetched")
	span.End()

	events := recorder.Ended()[0].Events()
	if len(events) != 1 || events[0].Name != "page_fetched" {
		t.Errorf("expected a single 'page_fetched' event, got %v", events)
	}
}

func TestGetTraceID(t *testing.T) {
	recordSpans(t)

	ctx, span := StartSpan(context.Background(), "test-span")
	defer span.End()

	if GetTraceID(ctx) == "" {
		t.Error("expected trace ID for context with span")
	}
	if GetSpanID(ctx) == "" {
		t.Error("expected span ID for context with span")
	}
}

func TestGetTraceID_NoSpan(t *testing.T) {
	ctx := context.Background()
	if traceID := GetTraceID(ctx); traceID != "" {
		t.Errorf("expected empty trace ID for context without span, got %q", traceID)
	}
}

func TestGetSpanID_NoSpan(t *testing.T) {
	ctx := context.Background()
	if spanID := GetSpanID(ctx); spanID != "" {
		t.Errorf("expected empty span ID for context without span, got %q", spanID)
	}
}
