package core

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxIDAttempts bounds how often a custom ID generator may collide before
// the repository falls back to random UUIDs.
const maxIDAttempts = 8

// Repository owns the canonical, ordered note collection and keeps the
// durable store in step with it.
//
// Single-writer contract: the repository is meant to be driven by exactly one
// session.Controller. It serializes its own methods, but it does not merge
// concurrent edits from independent writers.
type Repository struct {
	store  Store
	config RepositoryConfig

	mu    sync.RWMutex
	notes []Note
	index map[string]int

	writes       int
	lastWrite    *time.Time
	lastWriteErr error
}

// RepositoryConfig holds the configuration for the notes repository.
type RepositoryConfig struct {
	Key    string       // Store key the collection lives under. Defaults to DefaultKey.
	Logger *slog.Logger // Defaults to a discard logger.

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
	// NewID allocates note identifiers. Defaults to random UUIDs.
	// Collisions are detected and retried; uniqueness never depends on it.
	NewID func() string
	// WriteErrorHandler is called when a store write fails. The in-memory
	// collection stays authoritative either way.
	WriteErrorHandler func(error)
}

// NewRepository creates a repository backed by store. The collection starts
// empty; call Load to hydrate it.
func NewRepository(store Store, config RepositoryConfig) *Repository {
	if config.Key == "" {
		config.Key = DefaultKey
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.NewID == nil {
		config.NewID = uuid.NewString
	}

	return &Repository{
		store:  store,
		config: config,
		index:  make(map[string]int),
	}
}

// Key returns the store key the collection is persisted under.
func (r *Repository) Key() string {
	return r.config.Key
}

// Load reads the collection from the store and makes it the canonical one.
// Missing or unparseable data yields an empty collection; it is never an
// error for the caller.
func (r *Repository) Load(ctx context.Context) []Note {
	notes, _ := r.read(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.replaceLocked(notes)
	return r.snapshotLocked()
}

// Reload re-reads the store and reports whether the collection differs from
// the one held in memory. It is used when the blob was changed from outside
// the current session.
//
// Unlike Load, a failed read or an undecodable blob leaves the in-memory
// collection untouched: it stays authoritative until the store yields a
// readable collection again. A blob that no longer exists empties it.
func (r *Repository) Reload(ctx context.Context) ([]Note, bool) {
	notes, ok := r.read(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if !ok || equalNotes(r.notes, notes) {
		return r.snapshotLocked(), false
	}
	r.replaceLocked(notes)
	return r.snapshotLocked(), true
}

// List returns a copy of the collection in order.
func (r *Repository) List() []Note {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// Len returns the number of notes in the collection.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.notes)
}

// Get returns the note with the given id.
func (r *Repository) Get(id string) (Note, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return Note{}, false
	}
	return r.notes[i], true
}

// Upsert creates or updates a note from d and persists the collection.
//
// A draft whose ID is empty or unknown becomes a new note with a freshly
// allocated ID, appended to the end of the collection. A draft matching an
// existing note replaces its title and content in place and bumps UpdatedAt.
// It returns the updated collection and the resulting note.
func (r *Repository) Upsert(ctx context.Context, d Draft) ([]Note, Note) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	var note Note
	if i, ok := r.index[d.ID]; ok && d.ID != "" {
		note = r.notes[i]
		note.Title = d.Title
		note.Content = d.Content
		note.UpdatedAt = now
		if note.UpdatedAt.Before(note.CreatedAt) {
			note.UpdatedAt = note.CreatedAt
		}
		r.notes[i] = note
	} else {
		note = Note{
			ID:        r.allocateIDLocked(),
			Title:     d.Title,
			Content:   d.Content,
			CreatedAt: now,
			UpdatedAt: now,
		}
		r.index[note.ID] = len(r.notes)
		r.notes = append(r.notes, note)
	}

	r.persistLocked(ctx)
	return r.snapshotLocked(), note
}

// Remove deletes the note with the given id, if present, and persists the
// collection. Removing an unknown id is not an error.
func (r *Repository) Remove(ctx context.Context, id string) []Note {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i, ok := r.index[id]; ok {
		next := make([]Note, 0, len(r.notes)-1)
		next = append(next, r.notes[:i]...)
		next = append(next, r.notes[i+1:]...)
		r.notes = next
		r.reindexLocked()
	}

	r.persistLocked(ctx)
	return r.snapshotLocked()
}

// read fetches and normalizes the stored collection. ok is false when the
// store failed or held data that does not decode; notes is then empty.
func (r *Repository) read(ctx context.Context) (notes []Note, ok bool) {
	logger := r.config.Logger.With("key", r.config.Key)

	data, found, err := r.store.Read(ctx, r.config.Key)
	if err != nil {
		logger.Warn("failed to read notes", "error", err)
		return nil, false
	}
	if !found {
		logger.Debug("no stored notes")
		return nil, true
	}

	notes, err = DecodeNotes(data)
	if err != nil {
		logger.Warn("stored notes are corrupted", "error", err)
		return nil, false
	}
	return r.normalize(notes), true
}

// normalize enforces the collection invariants on data read from the store:
// unique non-empty IDs (first occurrence wins) and CreatedAt <= UpdatedAt.
func (r *Repository) normalize(in []Note) []Note {
	seen := make(map[string]bool, len(in))
	out := make([]Note, 0, len(in))

	for _, n := range in {
		if n.ID == "" {
			n.ID = r.freshID(seen)
			r.config.Logger.Debug("assigned id to stored note without one", "id", n.ID)
		}
		if seen[n.ID] {
			r.config.Logger.Warn("dropping duplicate stored note", "id", n.ID)
			continue
		}
		seen[n.ID] = true

		if n.CreatedAt.IsZero() {
			n.CreatedAt = n.UpdatedAt
		}
		if n.UpdatedAt.Before(n.CreatedAt) {
			n.UpdatedAt = n.CreatedAt
		}
		out = append(out, n)
	}
	return out
}

func (r *Repository) persistLocked(ctx context.Context) {
	logger := r.config.Logger.With("key", r.config.Key)

	data, err := EncodeNotes(r.notes)
	if err == nil {
		// Mutations are not cancelable once applied in memory.
		err = r.store.Write(context.WithoutCancel(ctx), r.config.Key, data)
	}

	r.writes++
	now := time.Now()
	r.lastWrite = &now
	r.lastWriteErr = err

	if err != nil {
		logger.Warn("failed to persist notes", "error", err, "notes", len(r.notes))
		if r.config.WriteErrorHandler != nil {
			r.config.WriteErrorHandler(err)
		}
		return
	}
	logger.Debug("notes persisted", "notes", len(r.notes), "bytes", len(data))
}

func (r *Repository) allocateIDLocked() string {
	taken := func(id string) bool {
		_, ok := r.index[id]
		return id == "" || ok
	}

	for range maxIDAttempts {
		if id := r.config.NewID(); !taken(id) {
			return id
		}
	}
	for {
		if id := uuid.NewString(); !taken(id) {
			return id
		}
	}
}

func (r *Repository) freshID(seen map[string]bool) string {
	for {
		if id := uuid.NewString(); !seen[id] {
			return id
		}
	}
}

func (r *Repository) replaceLocked(notes []Note) {
	r.notes = notes
	r.reindexLocked()
}

func (r *Repository) reindexLocked() {
	r.index = make(map[string]int, len(r.notes))
	for i, n := range r.notes {
		r.index[n.ID] = i
	}
}

func (r *Repository) snapshotLocked() []Note {
	out := make([]Note, len(r.notes))
	copy(out, r.notes)
	return out
}

// now strips the monotonic reading so timestamps survive a store round trip.
func (r *Repository) now() time.Time {
	return r.config.Now().UTC().Round(0)
}

func equalNotes(a, b []Note) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID ||
			a[i].Title != b[i].Title ||
			a[i].Content != b[i].Content ||
			!a[i].CreatedAt.Equal(b[i].CreatedAt) ||
			!a[i].UpdatedAt.Equal(b[i].UpdatedAt) {
			return false
		}
	}
	return true
}
