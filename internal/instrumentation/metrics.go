package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrTool      = "tool"
	attrKind      = "kind"
)

// Metrics provides methods for recording observability metrics.
// A zero Metrics, or a nil *Metrics, records nothing.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Evernote API metrics
	evernoteOperationsTotal   metric.Int64Counter
	evernoteOperationDuration metric.Float64Histogram
	evernoteErrorsTotal       metric.Int64Counter

	// Scan metrics
	scanRunsTotal     metric.Int64Counter
	notesScannedTotal metric.Int64Counter
	tasksFoundTotal   metric.Int64Counter

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.evernoteOperationsTotal, err = meter.Int64Counter(
		"evernote_api_operations_total",
		metric.WithDescription("Total number of Evernote API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create evernote_api_operations_total counter: %w", err)
	}

	m.evernoteOperationDuration, err = meter.Float64Histogram(
		"evernote_api_operation_duration_seconds",
		metric.WithDescription("Evernote API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create evernote_api_operation_duration_seconds histogram: %w", err)
	}

	m.evernoteErrorsTotal, err = meter.Int64Counter(
		"evernote_api_errors_total",
		metric.WithDescription("Total number of failed Evernote API operations by error kind"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create evernote_api_errors_total counter: %w", err)
	}

	m.scanRunsTotal, err = meter.Int64Counter(
		"scan_runs_total",
		metric.WithDescription("Total number of task scans by result"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan_runs_total counter: %w", err)
	}

	m.notesScannedTotal, err = meter.Int64Counter(
		"notes_scanned_total",
		metric.WithDescription("Total number of notes fetched and scanned for tasks"),
		metric.WithUnit("{note}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notes_scanned_total counter: %w", err)
	}

	m.tasksFoundTotal, err = meter.Int64Counter(
		"tasks_found_total",
		metric.WithDescription("Total number of task lines found in scanned notes"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks_found_total counter: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
// The path is reduced with NormalizePath.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, NormalizePath(path)),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordEvernoteOperation records a single EDAM call.
//
// Parameters:
//   - service: ServiceUserStore or ServiceNoteStore
//   - operation: one of the Operation* constants
//   - status: StatusSuccess or StatusError
//   - duration: time taken for the round trip
func (m *Metrics) RecordEvernoteOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.evernoteOperationsTotal == nil || m.evernoteOperationDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.evernoteOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.evernoteOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordEvernoteError counts a failed EDAM call by error kind
// (e.g. "authorization", "transport").
func (m *Metrics) RecordEvernoteError(ctx context.Context, operation, kind string) {
	if m == nil || m.evernoteErrorsTotal == nil {
		return
	}

	m.evernoteErrorsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrKind, kind),
	))
}

// RecordScan records the outcome of one scan run along with the number of
// notes fetched and tasks found.
func (m *Metrics) RecordScan(ctx context.Context, result string, notes, tasks int) {
	if m == nil || m.scanRunsTotal == nil {
		return
	}

	m.scanRunsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
	if m.notesScannedTotal != nil && notes > 0 {
		m.notesScannedTotal.Add(ctx, int64(notes))
	}
	if m.tasksFoundTotal != nil && tasks > 0 {
		m.tasksFoundTotal.Add(ctx, int64(tasks))
	}
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
//
// Parameters:
//   - toolName: Name of the MCP tool (e.g., "notes_count_tasks")
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the tool execution
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
