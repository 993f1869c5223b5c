package core

import (
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Key            string     `json:"key"`
	Notes          int        `json:"notes"`
	StoreType      string     `json:"store_type"`
	Writes         int        `json:"writes"`
	LastWrite      *time.Time `json:"last_write,omitempty"`
	LastWriteError string     `json:"last_write_error,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	storeType := "unknown"
	if r.store != nil {
		storeType = "store"
		if comp, ok := r.store.(introspection.Component); ok {
			storeType = comp.ComponentType()
		}
	}

	state := RepositoryState{
		Key:       r.config.Key,
		Notes:     len(r.notes),
		StoreType: storeType,
		Writes:    r.writes,
		LastWrite: r.lastWrite,
	}
	if r.lastWriteErr != nil {
		state.LastWriteError = r.lastWriteErr.Error()
	}
	return state
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
