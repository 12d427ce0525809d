// Package logging provides structured logging helpers for tasknotes.
//
// Loggers are plain log/slog loggers built with New. Components that only
// need to emit records accept the Logger interface, which SlogAdapter
// implements. Attribute helpers keep key names consistent:
//
//	logger := logging.WithRunID(slog.Default(), runID)
//	logger.Debug("fetched note",
//	    logging.NoteGUID(guid),
//	    logging.Status(logging.StatusSuccess))
//
// Developer tokens are never logged; use SanitizeToken when a token has to
// be referenced.
package logging
