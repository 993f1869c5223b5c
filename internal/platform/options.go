package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/session"
)

// Backend names accepted by WithBackend.
const (
	BackendFS     = "fs"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// options holds the internal configuration for a quire session.
type options struct {
	backend   string
	key       string
	store     core.Store
	logger    *slog.Logger
	confirmer session.Confirmer

	autosave  time.Duration
	watch     bool
	mustExist bool
	ignore    []string

	now   func() time.Time
	newID func() string

	writeErrorHandler   func(error)
	watcherErrorHandler func(error)
}

// Option defines a functional option for configuring quire.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		backend: BackendFS,
		key:     core.DefaultKey,
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithBackend selects the store by name: "fs" (default), "sqlite" or "memory".
func WithBackend(name string) Option {
	return func(o *options) {
		o.backend = name
	}
}

// WithKey sets the store key the collection lives under.
// Defaults to core.DefaultKey.
func WithKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.key = key
		}
	}
}

// WithStore injects a custom store (e.g. a fake in tests). The backend
// option and the URI are then ignored.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithConfirmer sets the provider that answers discard and delete prompts.
// Without one, every gated transition is declined.
func WithConfirmer(c session.Confirmer) Option {
	return func(o *options) {
		o.confirmer = c
	}
}

// WithAutosave saves the draft periodically while it has unsaved changes.
// Intervals below one second leave autosave off.
func WithAutosave(interval time.Duration) Option {
	return func(o *options) {
		o.autosave = interval
	}
}

// WithWatch reloads the session whenever the store changes underneath it.
// Only stores implementing core.Watchable honor it.
func WithWatch(enabled bool) Option {
	return func(o *options) {
		o.watch = enabled
	}
}

// WithMustExist makes opening fail when the data directory is missing
// instead of creating it.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithIgnore adds doublestar patterns whose changes the fs watcher skips.
func WithIgnore(patterns ...string) Option {
	return func(o *options) {
		o.ignore = append(o.ignore, patterns...)
	}
}

// WithClock overrides the time source used for note timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithIDGenerator overrides how note ids are allocated.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		o.newID = newID
	}
}

// WithWriteErrorHandler registers a callback for failed store writes. The
// session keeps working from memory either way.
func WithWriteErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.writeErrorHandler = fn
	}
}

// WithWatcherErrorHandler registers a callback for runtime watcher failures
// (e.g. permission denied) which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.watcherErrorHandler = fn
	}
}
