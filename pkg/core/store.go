package core

import "context"

// DefaultKey is the well-known key the whole note collection lives under.
const DefaultKey = "notes.app.v1"

// Store defines the contract for the durable key-value blob store the
// repository persists into. Implementations know nothing about notes.
// Adhering to this interface keeps the core independent of the underlying
// storage mechanism (filesystem, SQLite, memory).
type Store interface {
	// Read returns the blob stored under key. found is false when the key
	// has never been written.
	Read(ctx context.Context, key string) (data []byte, found bool, err error)

	// Write replaces the blob stored under key. A write either fully
	// applies or leaves the previous blob untouched.
	Write(ctx context.Context, key string, data []byte) error
}

// Watchable defines an interface for stores that can report changes made
// outside the current process.
type Watchable interface {
	// Watch emits an event whenever the blob under key changes on disk.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context, key string) (<-chan Event, error)
}
