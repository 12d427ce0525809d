// Package notes_tools provides MCP tools for scanning Evernote notes for
// numbered task lines.
//
// # Available Tools
//
//   - notes_count_tasks: Count tasks in the notes created during one month
//   - notes_search: Search notes with the Evernote search grammar
//   - notes_get_tasks: List the tasks in a single note
//
// All tools share the server's Evernote session, which is opened on the
// first call. A missing or placeholder developer token is reported as a
// tool error rather than failing the server.
package notes_tools
