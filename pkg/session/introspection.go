package session

import (
	"github.com/aretw0/introspection"

	"github.com/aretw0/quire/pkg/core"
)

// ControllerState exposes internal state for observability.
type ControllerState struct {
	Mode       Mode   `json:"mode"`
	SelectedID string `json:"selected_id,omitempty"`
	Dirty      bool   `json:"dirty"`
	Query      string `json:"query,omitempty"`
	Notes      int    `json:"notes"`
	Shown      int    `json:"shown"`
	Listeners  int    `json:"listeners"`
	Prompting  int    `json:"prompting,omitempty"`
	Version    uint64 `json:"version"`
}

// State implements introspection.Introspectable.
func (c *Controller) State() any {
	c.mu.Lock()
	defer c.mu.Unlock()

	return ControllerState{
		Mode:       c.mode,
		SelectedID: c.selectedID,
		Dirty:      c.dirty,
		Query:      c.query,
		Notes:      len(c.notes),
		Shown:      len(core.Filter(c.notes, c.query)),
		Listeners:  len(c.listeners),
		Prompting:  c.prompting,
		Version:    c.version,
	}
}

// ComponentType implements introspection.Component.
func (c *Controller) ComponentType() string {
	return "session"
}

var _ introspection.Introspectable = (*Controller)(nil)
var _ introspection.Component = (*Controller)(nil)
