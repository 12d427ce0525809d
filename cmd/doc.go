// Package cmd implements the command-line interface for tasknotes.
//
// This package provides the following commands:
//   - scan: Count the numbered tasks in the notes created during one month
//   - serve: Start the MCP server to provide tools for AI assistants
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The scan command is the default command when the first argument is not a
// subcommand, so "tasknotes 1" scans last month.
//
// Exit codes: 0 success, 1 usage or protocol error, 2 configuration,
// 3 authorization, 4 remote system error, 5 networking, 6 not found.
package cmd
