// Package quire is the composition root of the quire notes editor.
//
// It wires the editing session (pkg/session) and the note collection
// (pkg/core) to a durable blob store (pkg/adapters) behind functional
// options.
//
// The whole collection lives as one JSON blob under a single key
// ("notes.app.v1" by default). The store can be a directory of JSON files,
// a SQLite database or plain memory; every mutation rewrites the blob
// atomically.
//
// Usage:
//
//	app, err := quire.New(ctx, "./notes",
//		quire.WithAutosave(5*time.Second),
//		quire.WithWatch(true),
//		quire.WithConfirmer(myDialog),
//	)
//	if err != nil {
//		return err
//	}
//	defer app.Close()
//
//	app.Controller.StartNew(ctx)
//	app.Controller.Save(ctx, quire.Draft{Title: "Groceries", Content: "milk"})
package quire
