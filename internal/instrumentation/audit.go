package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// ToolInvocation captures one MCP tool call for audit logging.
//
// Query may contain note titles and tags typed by the user. It is only
// logged when the AuditLogger is configured with IncludeQuery.
type ToolInvocation struct {
	Tool string

	// Target information
	Query    string
	NoteGUID string
	RunID    string

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string
	ErrorKind string

	// Tracing context
	TraceID string
	SpanID  string
}

// Status returns "success" or "error" based on the Success field.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for operational logging. The search
// query is left out.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}

	if ti.NoteGUID != "" {
		attrs = append(attrs, slog.String("note_guid", ti.NoteGUID))
	}
	if ti.RunID != "" {
		attrs = append(attrs, slog.String("run_id", ti.RunID))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.ErrorKind != "" {
		attrs = append(attrs, slog.String("error_kind", ti.ErrorKind))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}

	return attrs
}

// LogAuditAttrs returns LogAttrs plus the span ID and the search query.
func (ti *ToolInvocation) LogAuditAttrs() []slog.Attr {
	attrs := ti.LogAttrs()
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	if ti.Query != "" {
		attrs = append(attrs, slog.String("query", ti.Query))
	}
	return attrs
}

// NewToolInvocation creates a new ToolInvocation with timing started.
// Call Complete() when the tool operation finishes.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithQuery sets the search query the tool ran.
func (ti *ToolInvocation) WithQuery(query string) *ToolInvocation {
	ti.Query = query
	return ti
}

// WithNote sets the GUID of the note the tool read.
func (ti *ToolInvocation) WithNote(guid string) *ToolInvocation {
	ti.NoteGUID = guid
	return ti
}

// WithRunID sets the scan run ID.
func (ti *ToolInvocation) WithRunID(runID string) *ToolInvocation {
	ti.RunID = runID
	return ti
}

// WithErrorKind sets the error classification, e.g. "authorization".
func (ti *ToolInvocation) WithErrorKind(kind string) *ToolInvocation {
	ti.ErrorKind = kind
	return ti
}

// WithSpanContext extracts trace context from the current span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		ti.TraceID = span.SpanContext().TraceID().String()
		ti.SpanID = span.SpanContext().SpanID().String()
	}
	return ti
}

// Complete marks the invocation as completed and calculates duration.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteWithError marks the invocation as failed with the given error.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// CompleteSuccess marks the invocation as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// AuditLogger writes tool invocations to a slog.Logger.
type AuditLogger struct {
	logger       *slog.Logger
	includeQuery bool
	enabled      bool
}

// NewAuditLogger creates an enabled AuditLogger that leaves queries out.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:       logger,
		includeQuery: config.IncludeQuery,
		enabled:      config.Enabled,
	}
}

// LogToolInvocation logs ti at info level on success and warn level on failure.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.enabled {
		return
	}

	var attrs []slog.Attr
	if al.includeQuery {
		attrs = ti.LogAuditAttrs()
	} else {
		attrs = ti.LogAttrs()
	}

	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if ti.Success {
		al.logger.Info("tool_executed", args...)
	} else {
		al.logger.Warn("tool_failed", args...)
	}
}
