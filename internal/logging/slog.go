package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Common log attribute keys.
const (
	KeyOperation = "operation"
	KeyService   = "service"
	KeyTool      = "tool"
	KeyNoteGUID  = "note_guid"
	KeyQuery     = "query"
	KeyRunID     = "run_id"
	KeyKind      = "error_kind"
	KeyDuration  = "duration"
	KeyStatus    = "status"
	KeyError     = "error"
)

// Status values. These mirror the instrumentation package constants.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Options configures New.
type Options struct {
	// Level is the minimum level written. Defaults to slog.LevelInfo.
	Level slog.Leveler
	// JSON selects the JSON handler instead of the text handler.
	JSON bool
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// ParseLevel converts "debug", "info", "warn" or "error" into a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithRunID returns a logger tagged with a scan run ID.
func WithRunID(logger *slog.Logger, runID string) *slog.Logger {
	return logger.With(slog.String(KeyRunID, runID))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Service returns a slog attribute for the service name.
func Service(svc string) slog.Attr {
	return slog.String(KeyService, svc)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// NoteGUID returns a slog attribute for a note GUID.
func NoteGUID(guid string) slog.Attr {
	return slog.String(KeyNoteGUID, guid)
}

// Query returns a slog attribute for a search query.
func Query(q string) slog.Attr {
	return slog.String(KeyQuery, q)
}

// RunID returns a slog attribute for a scan run ID.
func RunID(id string) slog.Attr {
	return slog.String(KeyRunID, id)
}

// ErrorKind returns a slog attribute for an error classification.
func ErrorKind(kind fmt.Stringer) slog.Attr {
	return slog.String(KeyKind, kind.String())
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// SanitizeToken returns a masked version of a token for logging.
// Only the length is kept; Evernote developer tokens embed the shard and
// user ID in their prefix.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
