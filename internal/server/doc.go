// Package server holds the runtime pieces of the tasknotes MCP server.
//
// ServerContext is shared by all tool handlers. It owns the configuration,
// the metrics recorder and audit logger, and a lazily opened Evernote note
// store: the session is created on the first tool call that needs it, and a
// failed attempt is retried on the next call.
//
// HTTPServer exposes the MCP server over the streamable HTTP transport on
// /mcp together with the health endpoints:
//   - /healthz: liveness
//   - /readyz: readiness, including whether a session is open
//   - /healthz/detailed: uptime and session state
//
// MetricsServer serves Prometheus metrics on a separate port.
package server
