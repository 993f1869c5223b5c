// Package session holds the editing-session state machine that sits between
// the presentation layer and the notes repository.
package session

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/quire/pkg/core"
)

// Mode is the editor state.
type Mode string

const (
	// ModeEmpty means no note is selected and there is nothing to edit.
	ModeEmpty Mode = "empty"
	// ModeCreating means the draft is not backed by any stored note yet.
	ModeCreating Mode = "creating"
	// ModeEditing means an existing note is selected.
	ModeEditing Mode = "editing"
)

// EmptyState tells the list view what to show when it has no rows.
type EmptyState string

const (
	EmptyNone      EmptyState = ""
	EmptyNoNotes   EmptyState = "no-notes"
	EmptyNoMatches EmptyState = "no-matches"
)

// Snapshot is a consistent copy of the session, handed to subscribers.
type Snapshot struct {
	Notes      []core.Note
	Filtered   []core.Note
	SelectedID string
	Mode       Mode
	Dirty      bool
	Query      string
	Draft      core.Draft
}

// Stats summarizes the list pane.
type Stats struct {
	Total int
	Shown int
	Empty EmptyState
}

// Config holds the collaborators of a Controller.
type Config struct {
	Confirmer Confirmer    // Defaults to Never: gated transitions are declined.
	Logger    *slog.Logger // Defaults to a discard logger.
}

// Controller owns the UI-facing session state (selection, mode, draft, dirty
// flag, search query) and routes every mutation through the repository.
//
// It is the single writer of its repository. Methods are safe to call from
// several goroutines (the autosave ticker, a store follower, the UI), and each
// one applies atomically with respect to the others. Invalid operations are
// silent no-ops reported through the boolean results.
type Controller struct {
	repo    *core.Repository
	confirm Confirmer
	logger  *slog.Logger

	mu         sync.Mutex
	notes      []core.Note
	selectedID string
	mode       Mode
	draft      core.Draft
	dirty      bool
	query      string

	version   uint64
	changed   bool
	prompting int
	listeners map[int]func(Snapshot)
	nextSub   int
}

// NewController creates a controller over an already loaded repository and
// derives the initial selection from its collection.
func NewController(repo *core.Repository, config Config) *Controller {
	if config.Confirmer == nil {
		config.Confirmer = Never()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Controller{
		repo:      repo,
		confirm:   config.Confirmer,
		logger:    config.Logger,
		notes:     repo.List(),
		mode:      ModeEmpty,
		listeners: make(map[int]func(Snapshot)),
	}
	c.reconcileLocked()
	c.recomputeDirtyLocked()
	return c
}

// --- Observables ---

// Notes returns the full collection in order.
func (c *Controller) Notes() []core.Note {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.notes)
}

// Filtered returns the notes matching the current query.
func (c *Controller) Filtered() []core.Note {
	c.mu.Lock()
	defer c.mu.Unlock()
	return core.Filter(c.notes, c.query)
}

// SelectedID returns the selected note id, or "" when none is selected.
func (c *Controller) SelectedID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedID
}

// Selected returns the selected note.
func (c *Controller) Selected() (core.Note, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedLocked()
}

// Mode returns the current editor mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Dirty reports whether the draft differs from the stored note.
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// Query returns the raw search query.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Draft returns the tracked draft.
func (c *Controller) Draft() core.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Snapshot returns a consistent copy of the whole session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Stats returns the list counters and which empty state applies.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{Total: len(c.notes), Shown: len(core.Filter(c.notes, c.query))}
	switch {
	case s.Total == 0:
		s.Empty = EmptyNoNotes
	case s.Shown == 0:
		s.Empty = EmptyNoMatches
	}
	return s
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs outside the controller lock. The returned func unsubscribes.
func (c *Controller) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.listeners[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// --- Transitions ---

// SetQuery replaces the search query. Normalization happens when filtering.
func (c *Controller) SetQuery(q string) {
	c.mu.Lock()
	defer c.unlock()

	if q == c.query {
		return
	}
	c.query = q
	c.touchLocked()
}

// SetDraft records what the user is typing and recomputes the dirty flag.
// It is ignored in ModeEmpty, where there is nothing to edit.
func (c *Controller) SetDraft(title, content string) bool {
	c.mu.Lock()
	defer c.unlock()

	if c.mode == ModeEmpty {
		return false
	}
	if c.draft.Title == title && c.draft.Content == content {
		return true
	}
	c.draft.Title = title
	c.draft.Content = content
	c.recomputeDirtyLocked()
	c.touchLocked()
	return true
}

// Select makes the note with the given id the one being edited. Unsaved
// changes are only discarded after the Confirmer agrees.
func (c *Controller) Select(ctx context.Context, id string) bool {
	c.mu.Lock()
	defer c.unlock()

	if _, ok := c.findLocked(id); !ok {
		c.logger.Debug("select ignored, unknown note", "id", id)
		return false
	}
	if c.dirty && !c.confirmLocked(ctx, Prompt{Kind: PromptDiscard, NoteID: id, Message: msgDiscardSwitch}) {
		return false
	}
	// The prompt releases the lock, so the target may be gone by now.
	n, ok := c.findLocked(id)
	if !ok {
		return false
	}

	c.editLocked(n)
	c.touchLocked()
	return true
}

// StartNew switches to an unsaved draft with no backing note, behind the same
// discard confirmation as Select.
func (c *Controller) StartNew(ctx context.Context) bool {
	c.mu.Lock()
	defer c.unlock()

	if c.dirty && !c.confirmLocked(ctx, Prompt{Kind: PromptDiscard, Message: msgDiscardNew}) {
		return false
	}

	c.selectedID = ""
	c.mode = ModeCreating
	c.draft = core.Draft{}
	c.dirty = false
	c.touchLocked()
	return true
}

// Save upserts d and selects the resulting note. It is a no-op in ModeEmpty.
//
// While creating, d always produces a new note. While editing, an empty
// d.ID refers to the selected note.
func (c *Controller) Save(ctx context.Context, d core.Draft) (core.Note, bool) {
	c.mu.Lock()
	defer c.unlock()
	return c.saveLocked(ctx, d)
}

// SaveDraft saves the tracked draft.
func (c *Controller) SaveDraft(ctx context.Context) (core.Note, bool) {
	c.mu.Lock()
	defer c.unlock()
	return c.saveLocked(ctx, c.draft)
}

// SaveIfDirty saves the tracked draft only when it has unsaved changes. It
// holds off while a confirmation is pending, since the user is deciding
// whether to keep that draft at all.
func (c *Controller) SaveIfDirty(ctx context.Context) (core.Note, bool) {
	c.mu.Lock()
	defer c.unlock()

	if !c.dirty || c.prompting > 0 {
		return core.Note{}, false
	}
	return c.saveLocked(ctx, c.draft)
}

// Delete removes the selected note after the Confirmer agrees, then selects
// the first remaining note (or enters ModeEmpty). Only the note currently
// selected in ModeEditing can be deleted.
func (c *Controller) Delete(ctx context.Context, id string) bool {
	c.mu.Lock()
	defer c.unlock()

	if c.mode != ModeEditing || id == "" || id != c.selectedID {
		c.logger.Debug("delete ignored, note is not selected", "id", id, "mode", c.mode)
		return false
	}
	if _, ok := c.findLocked(id); !ok {
		return false
	}
	if !c.confirmLocked(ctx, Prompt{Kind: PromptDelete, NoteID: id, Message: msgDelete}) {
		return false
	}
	// The answer was about this note; it must still be the one on screen.
	if _, ok := c.findLocked(id); !ok || c.mode != ModeEditing || c.selectedID != id {
		c.logger.Debug("delete dropped, note no longer selected", "id", id)
		return false
	}

	c.notes = c.repo.Remove(ctx, id)
	if len(c.notes) == 0 {
		c.clearLocked()
	} else {
		c.editLocked(c.notes[0])
	}
	c.touchLocked()
	return true
}

// Refresh re-reads the store and, when the collection changed underneath the
// session, re-derives the selection from it.
func (c *Controller) Refresh(ctx context.Context) bool {
	c.mu.Lock()
	defer c.unlock()

	notes, changed := c.repo.Reload(ctx)
	if !changed {
		return false
	}

	c.logger.Debug("collection changed outside the session", "notes", len(notes))
	c.notes = notes
	c.reconcileLocked()
	c.recomputeDirtyLocked()
	c.touchLocked()
	return true
}

// --- Internals (c.mu held) ---

func (c *Controller) saveLocked(ctx context.Context, d core.Draft) (core.Note, bool) {
	switch c.mode {
	case ModeEmpty:
		c.logger.Debug("save ignored, nothing to edit")
		return core.Note{}, false
	case ModeCreating:
		d.ID = ""
	case ModeEditing:
		if d.ID == "" {
			d.ID = c.selectedID
		}
	}

	notes, note := c.repo.Upsert(ctx, d)
	c.notes = notes
	c.editLocked(note)
	c.reconcileLocked()
	c.touchLocked()
	return note, true
}

// reconcileLocked re-derives selection from the collection: an empty
// collection forces ModeEmpty, and a missing selection falls back to the
// first note.
func (c *Controller) reconcileLocked() {
	if len(c.notes) == 0 {
		c.clearLocked()
		return
	}
	if _, ok := c.selectedLocked(); !ok {
		c.editLocked(c.notes[0])
	}
}

func (c *Controller) recomputeDirtyLocked() {
	switch c.mode {
	case ModeEditing:
		n, ok := c.selectedLocked()
		c.dirty = ok && c.draft.Differs(n)
	case ModeCreating:
		c.dirty = c.draft.Title != "" || c.draft.Content != ""
	default:
		c.dirty = false
	}
}

func (c *Controller) editLocked(n core.Note) {
	c.selectedID = n.ID
	c.mode = ModeEditing
	c.draft = core.DraftOf(n)
	c.dirty = false
}

func (c *Controller) clearLocked() {
	c.selectedID = ""
	c.mode = ModeEmpty
	c.draft = core.Draft{}
	c.dirty = false
}

// confirmLocked asks the Confirmer without holding the lock. Other callers
// may change the session meanwhile; each gated transition re-checks its own
// target after a yes.
func (c *Controller) confirmLocked(ctx context.Context, p Prompt) bool {
	c.prompting++
	c.mu.Unlock()
	ok, err := c.confirm.Confirm(ctx, p)
	c.mu.Lock()
	c.prompting--

	switch {
	case err != nil:
		c.logger.Warn("confirmation failed, treating as declined", "kind", p.Kind, "error", err)
		return false
	case !ok:
		c.logger.Debug("confirmation declined", "kind", p.Kind, "id", p.NoteID)
		return false
	}
	return true
}

func (c *Controller) selectedLocked() (core.Note, bool) {
	if c.selectedID == "" {
		return core.Note{}, false
	}
	return c.findLocked(c.selectedID)
}

func (c *Controller) findLocked(id string) (core.Note, bool) {
	for _, n := range c.notes {
		if n.ID == id {
			return n, true
		}
	}
	return core.Note{}, false
}

func (c *Controller) touchLocked() {
	c.version++
	c.changed = true
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Notes:      slices.Clone(c.notes),
		Filtered:   core.Filter(c.notes, c.query),
		SelectedID: c.selectedID,
		Mode:       c.mode,
		Dirty:      c.dirty,
		Query:      c.query,
		Draft:      c.draft,
	}
}

// unlock releases c.mu and, if the state changed, notifies subscribers.
func (c *Controller) unlock() {
	if !c.changed {
		c.mu.Unlock()
		return
	}

	c.changed = false
	snap := c.snapshotLocked()
	listeners := slices.Collect(maps.Values(c.listeners))
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
