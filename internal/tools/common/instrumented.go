package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/tasknotes/internal/evernote"
	"github.com/teemow/tasknotes/internal/instrumentation"
	"github.com/teemow/tasknotes/internal/server"
)

// ToolHandler is the signature of an MCP tool handler. It is an alias so
// wrapped handlers can be passed straight to AddTool.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

type invocationKey struct{}

// InstrumentedToolHandler wraps a tool handler with a span, metrics and
// audit logging. Handlers may enrich the audit record through SetQuery,
// SetRunID and ErrorResult using the context they are given.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		args := request.GetArguments()
		guid := GetStringArg(args, "guid", "")

		ctx, span := instrumentation.StartToolSpan(ctx, toolName,
			instrumentation.NewSpanAttributeBuilder().WithNoteGUID(guid).Build()...)
		defer span.End()

		invocation := instrumentation.NewToolInvocation(toolName).
			WithNote(guid).
			WithSpanContext(ctx)
		ctx = context.WithValue(ctx, invocationKey{}, invocation)

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			invocation.CompleteWithError(err)
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			invocation.Complete(false, nil)
			instrumentation.SetSpanError(span, errors.New(resultText(result)))
		default:
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		sc.Metrics().RecordToolInvocation(ctx, toolName, status, duration)
		sc.AuditLogger().LogToolInvocation(invocation)

		return result, err
	}
}

func invocationFrom(ctx context.Context) *instrumentation.ToolInvocation {
	ti, _ := ctx.Value(invocationKey{}).(*instrumentation.ToolInvocation)
	return ti
}

// SetQuery records the search query a tool ran.
func SetQuery(ctx context.Context, query string) {
	if ti := invocationFrom(ctx); ti != nil {
		ti.WithQuery(query)
	}
}

// SetRunID records the scan run ID a tool produced.
func SetRunID(ctx context.Context, runID string) {
	if ti := invocationFrom(ctx); ti != nil {
		ti.WithRunID(runID)
	}
}

// ErrorResult returns a tool error result for err and records its kind
// and message on the invocation.
func ErrorResult(ctx context.Context, msg string, err error) *mcp.CallToolResult {
	text := fmt.Sprintf("%s: %v", msg, err)
	if ti := invocationFrom(ctx); ti != nil {
		ti.Error = text
		if kind := evernote.KindOf(err); kind != 0 {
			ti.WithErrorKind(kind.String())
		}
	}
	return mcp.NewToolResultError(text)
}

func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return "tool returned an error result"
}
