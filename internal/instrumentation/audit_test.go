package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

const (
	testToolCount = "notes_count_tasks"
	testToolGet   = "notes_get_tasks"
	testQuery     = "intitle:Дела created:20260901 -created:20261001"
	testGUID      = "5b2ec8b3-0c2a-4b7e-9d0e-0a9c1c6b1e11"
)

// decodeRecord parses the single JSON log record written to buf.
func decodeRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("failed to decode log record %q: %v", buf.String(), err)
	}
	return record
}

func TestToolInvocation_NewAndComplete(t *testing.T) {
	ti := NewToolInvocation(testToolCount)

	if ti.Tool != testToolCount {
		t.Errorf("Tool = %q, want %q", ti.Tool, testToolCount)
	}
	if ti.StartTime.IsZero() {
		t.Error("StartTime should not be zero")
	}

	ti.CompleteSuccess()

	if !ti.Success {
		t.Error("Success should be true")
	}
	if ti.Duration < 0 {
		t.Error("Duration should not be negative")
	}
	if ti.Error != "" {
		t.Errorf("Error should be empty, got %q", ti.Error)
	}
	if ti.Status() != StatusSuccess {
		t.Errorf("Status() = %q, want %q", ti.Status(), StatusSuccess)
	}
}

func TestToolInvocation_CompleteWithError(t *testing.T) {
	ti := NewToolInvocation(testToolGet).WithErrorKind("not_found")

	ti.CompleteWithError(errors.New("note not found"))

	if ti.Success {
		t.Error("Success should be false")
	}
	if ti.Error != "note not found" {
		t.Errorf("Error = %q, want %q", ti.Error, "note not found")
	}
	if ti.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", ti.Status(), StatusError)
	}
}

func TestToolInvocation_LogAttrs(t *testing.T) {
	ti := NewToolInvocation(testToolCount).
		WithQuery(testQuery).
		WithRunID("run-1").
		CompleteSuccess()
	ti.TraceID = "abc123"

	attrs := ti.LogAttrs()
	keys := make(map[string]bool)
	for _, a := range attrs {
		keys[a.Key] = true
	}

	for _, want := range []string{"tool", "duration", "success", "run_id", "trace_id"} {
		if !keys[want] {
			t.Errorf("expected attribute %q in %v", want, attrs)
		}
	}
	if keys["query"] {
		t.Error("query must not be part of operational attributes")
	}
}

func TestToolInvocation_LogAuditAttrs(t *testing.T) {
	ti := NewToolInvocation(testToolGet).
		WithNote(testGUID).
		WithQuery(testQuery).
		CompleteSuccess()
	ti.SpanID = "span789"

	keys := make(map[string]any)
	for _, a := range ti.LogAuditAttrs() {
		keys[a.Key] = a.Value.Any()
	}

	if keys["query"] != testQuery {
		t.Errorf("query = %v, want %q", keys["query"], testQuery)
	}
	if keys["note_guid"] != testGUID {
		t.Errorf("note_guid = %v, want %q", keys["note_guid"], testGUID)
	}
	if keys["span_id"] != "span789" {
		t.Errorf("span_id = %v, want %q", keys["span_id"], "span789")
	}
}

func TestToolInvocation_WithSpanContext_NoSpan(t *testing.T) {
	ti := NewToolInvocation(testToolCount).WithSpanContext(context.Background())

	if ti.TraceID != "" || ti.SpanID != "" {
		t.Errorf("expected empty trace context, got trace=%q span=%q", ti.TraceID, ti.SpanID)
	}
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	tests := []struct {
		name         string
		config       AuditLoggingConfig
		success      bool
		wantLevel    string
		wantMessage  string
		wantQuery    bool
		wantNoRecord bool
	}{
		{
			name:        "success",
			config:      AuditLoggingConfig{Enabled: true},
			success:     true,
			wantLevel:   "INFO",
			wantMessage: "tool_executed",
		},
		{
			name:        "failure",
			config:      AuditLoggingConfig{Enabled: true},
			wantLevel:   "WARN",
			wantMessage: "tool_failed",
		},
		{
			name:        "include query",
			config:      AuditLoggingConfig{Enabled: true, IncludeQuery: true},
			success:     true,
			wantLevel:   "INFO",
			wantMessage: "tool_executed",
			wantQuery:   true,
		},
		{
			name:         "disabled",
			config:       AuditLoggingConfig{},
			success:      true,
			wantNoRecord: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			al := NewAuditLoggerWithConfig(slog.New(slog.NewJSONHandler(&buf, nil)), tt.config)

			ti := NewToolInvocation(testToolCount).WithQuery(testQuery)
			if tt.success {
				ti.CompleteSuccess()
			} else {
				ti.CompleteWithError(errors.New("boom"))
			}
			al.LogToolInvocation(ti)

			if tt.wantNoRecord {
				if buf.Len() != 0 {
					t.Errorf("expected no output, got %q", buf.String())
				}
				return
			}

			record := decodeRecord(t, &buf)
			if record["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", record["level"], tt.wantLevel)
			}
			if record["msg"] != tt.wantMessage {
				t.Errorf("msg = %v, want %s", record["msg"], tt.wantMessage)
			}
			if _, ok := record["query"]; ok != tt.wantQuery {
				t.Errorf("query present = %v, want %v", ok, tt.wantQuery)
			}
		})
	}
}

func TestAuditLogger_Nil(t *testing.T) {
	var al *AuditLogger
	// Should not panic
	al.LogToolInvocation(NewToolInvocation(testToolCount).CompleteSuccess())
}
