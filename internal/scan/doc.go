// Package scan counts numbered task lines in Evernote notes.
//
// A scan picks the calendar month lying N months before the current one,
// searches for notes whose title contains the configured filter and that
// were created in that month, fetches each note's ENML body and counts the
// lines matching
//
//	<div>\d+\s?\.(.*)\n
//
// Only the first page of search results is scanned unless Options.AllPages
// is set; a partial scan is reported through Result.Truncated.
package scan
