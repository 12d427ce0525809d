// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for tasknotes.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Evernote API Metrics:
//   - evernote_api_operations_total: Counter of EDAM calls by service, operation, status
//   - evernote_api_operation_duration_seconds: Histogram of EDAM call durations
//   - evernote_api_errors_total: Counter of failed EDAM calls by operation and error kind
//
// Scan Metrics:
//   - scan_runs_total: Counter of scans by result (complete, truncated, failed)
//   - notes_scanned_total: Counter of notes fetched and scanned
//   - tasks_found_total: Counter of task lines found
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Spans are created for:
//   - scan runs (scan.run)
//   - MCP tool invocations (tool.<name>)
//   - EDAM calls (evernote.<service>.<operation>)
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: tasknotes)
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_QUERY: audit log switches
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordEvernoteOperation(ctx, instrumentation.ServiceNoteStore,
//		instrumentation.OperationFindNotes, instrumentation.StatusSuccess, time.Since(start))
package instrumentation
