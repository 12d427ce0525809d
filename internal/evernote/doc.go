// Package evernote provides a minimal client for the Evernote EDAM API.
//
// Only the calls needed to search and read notes are implemented:
//   - UserStore.checkVersion and UserStore.getNoteStoreUrl (session setup)
//   - NoteStore.findNotes (search, metadata only)
//   - NoteStore.getNote (full ENML content)
//
// Calls use the Thrift binary protocol over HTTPS, one POST per call. Every
// failure is returned as an *Error whose Kind tells the caller where it came
// from (configuration, protocol version, user/system exceptions, transport).
//
// Example usage:
//
//	sess, err := evernote.NewSession(ctx, evernote.SessionConfig{
//	    ServiceURL:  evernote.ProductionHost,
//	    ClientName:  "tasknotes (Go)",
//	    TokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	notes, err := sess.NoteStore().FindNotes(ctx, evernote.NoteFilter{
//	    Words: "intitle:Groceries",
//	    Order: evernote.SortUpdated,
//	}, 0, 50)
package evernote
