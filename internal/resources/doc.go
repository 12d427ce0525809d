// Package resources provides MCP resources for exposing scan settings and
// session state. Resources are read-only data sources that MCP clients can
// fetch without running a tool.
//
//   - tasknotes://config: the active title filter, page size and service
//   - tasknotes://session: whether the Evernote session is open
package resources
