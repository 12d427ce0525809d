package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newTestMetrics(t *testing.T) (*Metrics, context.Context) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}
	return metrics, ctx
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	metrics, ctx := newTestMetrics(t)

	// Should not panic
	metrics.RecordHTTPRequest(ctx, "GET", "/mcp", 200, 100*time.Millisecond)
	metrics.RecordHTTPRequest(ctx, "POST", "/mcp", 500, 50*time.Millisecond)
}

func TestMetrics_RecordEvernoteOperation(t *testing.T) {
	metrics, ctx := newTestMetrics(t)

	metrics.RecordEvernoteOperation(ctx, ServiceUserStore, OperationCheckVersion, StatusSuccess, 80*time.Millisecond)
	metrics.RecordEvernoteOperation(ctx, ServiceNoteStore, OperationFindNotes, StatusSuccess, 200*time.Millisecond)
	metrics.RecordEvernoteOperation(ctx, ServiceNoteStore, OperationGetNote, StatusError, 150*time.Millisecond)
}

func TestMetrics_RecordEvernoteError(t *testing.T) {
	metrics, ctx := newTestMetrics(t)

	metrics.RecordEvernoteError(ctx, OperationFindNotes, "authorization")
	metrics.RecordEvernoteError(ctx, OperationGetNote, "transport")
}

func TestMetrics_RecordScan(t *testing.T) {
	metrics, ctx := newTestMetrics(t)

	metrics.RecordScan(ctx, ScanResultComplete, 3, 12)
	metrics.RecordScan(ctx, ScanResultTruncated, 500, 40)
	metrics.RecordScan(ctx, ScanResultFailed, 0, 0)
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	metrics, ctx := newTestMetrics(t)

	metrics.RecordToolInvocation(ctx, "notes_count_tasks", StatusSuccess, 300*time.Millisecond)
	metrics.RecordToolInvocation(ctx, "notes_get_tasks", StatusError, 100*time.Millisecond)
}

func TestMetrics_NoOp_WhenDisabled(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil even when disabled")
	}

	// All these should not panic even with nil underlying metrics
	metrics.RecordHTTPRequest(ctx, "GET", "/mcp", 200, 100*time.Millisecond)
	metrics.RecordEvernoteOperation(ctx, ServiceNoteStore, OperationFindNotes, StatusSuccess, 200*time.Millisecond)
	metrics.RecordEvernoteError(ctx, OperationFindNotes, "transport")
	metrics.RecordScan(ctx, ScanResultComplete, 1, 2)
	metrics.RecordToolInvocation(ctx, "test_tool", StatusSuccess, 100*time.Millisecond)
}

func TestMetrics_NilReceiver(t *testing.T) {
	var metrics *Metrics
	ctx := context.Background()

	metrics.RecordHTTPRequest(ctx, "GET", "/healthz", 200, time.Millisecond)
	metrics.RecordEvernoteOperation(ctx, ServiceNoteStore, OperationGetNote, StatusError, time.Millisecond)
	metrics.RecordEvernoteError(ctx, OperationGetNote, "not_found")
	metrics.RecordScan(ctx, ScanResultFailed, 0, 0)
	metrics.RecordToolInvocation(ctx, "notes_search", StatusError, time.Millisecond)
}
