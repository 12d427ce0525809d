package instrumentation

import "strings"

// Cardinality helpers for metric labels.
// Label values taken from requests must be reduced to a fixed set before
// they are recorded, otherwise every requested URL becomes a new series.

// PathOther is the label value for paths that are not served by tasknotes.
const PathOther = "other"

var knownPaths = map[string]struct{}{
	"/mcp":              {},
	"/healthz":          {},
	"/healthz/detailed": {},
	"/readyz":           {},
	"/metrics":          {},
}

// NormalizePath maps a request path to a bounded label value.
//
// Example:
//
//	NormalizePath("/mcp")          // "/mcp"
//	NormalizePath("/readyz/")      // "/readyz"
//	NormalizePath("/wp-login.php") // "other"
//	NormalizePath("")              // "other"
func NormalizePath(path string) string {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if _, ok := knownPaths[path]; ok {
		return path
	}
	return PathOther
}
