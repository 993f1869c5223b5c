package core

import "errors"

// Common errors.
var (
	ErrEmptyKey       = errors.New("store key cannot be empty")
	ErrClosed         = errors.New("store is closed")
	ErrUnknownBackend = errors.New("unknown storage backend")
)
