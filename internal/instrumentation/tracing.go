package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for the tasknotes module.
const TracerName = "github.com/teemow/tasknotes"

// Span attribute keys.
const (
	// SpanAttrTool is the MCP tool name attribute.
	SpanAttrTool = "mcp.tool"

	// SpanAttrService is the EDAM service attribute (userstore, notestore).
	SpanAttrService = "evernote.service"

	// SpanAttrOperation is the EDAM operation attribute.
	SpanAttrOperation = "evernote.operation"

	// SpanAttrNoteGUID is the GUID of the note being fetched.
	SpanAttrNoteGUID = "evernote.note_guid"

	// SpanAttrQuery is the rendered search grammar query.
	SpanAttrQuery = "tasknotes.query"

	// SpanAttrMonthsBack is the requested month offset of a scan.
	SpanAttrMonthsBack = "tasknotes.months_back"

	// SpanAttrRunID identifies one scan run.
	SpanAttrRunID = "tasknotes.run_id"
)

// SpanAttributeBuilder helps construct OpenTelemetry span attributes
// with consistent naming.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewSpanAttributeBuilder creates a new SpanAttributeBuilder.
func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 8),
	}
}

// WithTool adds the MCP tool name attribute.
func (b *SpanAttributeBuilder) WithTool(tool string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrTool, tool))
	return b
}

// WithService adds the EDAM service attribute.
func (b *SpanAttributeBuilder) WithService(service string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrService, service))
	return b
}

// WithOperation adds the operation attribute.
func (b *SpanAttributeBuilder) WithOperation(operation string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrOperation, operation))
	return b
}

// WithNoteGUID adds the note GUID attribute. Empty values are skipped.
func (b *SpanAttributeBuilder) WithNoteGUID(guid string) *SpanAttributeBuilder {
	if guid != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrNoteGUID, guid))
	}
	return b
}

// WithQuery adds the search query attribute. Empty values are skipped.
func (b *SpanAttributeBuilder) WithQuery(query string) *SpanAttributeBuilder {
	if query != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrQuery, query))
	}
	return b
}

// WithMonthsBack adds the month offset attribute.
func (b *SpanAttributeBuilder) WithMonthsBack(monthsBack int) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.Int(SpanAttrMonthsBack, monthsBack))
	return b
}

// WithRunID adds the scan run ID attribute. Empty values are skipped.
func (b *SpanAttributeBuilder) WithRunID(runID string) *SpanAttributeBuilder {
	if runID != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrRunID, runID))
	}
	return b
}

// Build returns the constructed attributes.
func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

// StartSpan starts a new span with the given name and attributes.
// The caller is responsible for ending the span with defer span.End().
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartToolSpan starts a server span named tool.<name> for an MCP tool invocation.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+1)
	allAttrs = append(allAttrs, attribute.String(SpanAttrTool, toolName))
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "tool."+toolName,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartEvernoteSpan starts a client span named evernote.<service>.<operation>
// for a single EDAM call.
func StartEvernoteSpan(ctx context.Context, service, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+2)
	allAttrs = append(allAttrs,
		attribute.String(SpanAttrService, service),
		attribute.String(SpanAttrOperation, operation),
	)
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "evernote."+service+"."+operation,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records an error on the span and sets the status to error.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddSpanEvent adds an event to the span with optional attributes.
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// GetTraceID returns the trace ID from the current span in context.
// Returns empty string if no valid span is present.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

// GetSpanID returns the span ID from the current span in context.
// Returns empty string if no valid span is present.
func GetSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().SpanID().String()
	}
	return ""
}
