package quire

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/quire/internal/platform"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/session"
)

// --- Types ---

// Note is a public alias for the stored note.
type Note = core.Note

// Draft is a public alias for the editable part of a note.
type Draft = core.Draft

// App is a wired editing session.
type App = platform.App

// Controller is a public alias for the session state machine.
type Controller = session.Controller

// Confirmer answers discard and delete prompts.
type Confirmer = session.Confirmer

// --- Configuration ---

// Option defines a functional option for configuring quire.
type Option = platform.Option

// Config mirrors quire.yaml.
type Config = platform.Config

// WithBackend selects the store by name: "fs" (default), "sqlite" or "memory".
func WithBackend(name string) Option {
	return platform.WithBackend(name)
}

// WithKey sets the store key the collection lives under.
func WithKey(key string) Option {
	return platform.WithKey(key)
}

// WithStore injects a custom store.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithConfirmer sets the provider that answers discard and delete prompts.
func WithConfirmer(c Confirmer) Option {
	return platform.WithConfirmer(c)
}

// WithAutosave saves unsaved changes every interval (one second minimum).
func WithAutosave(interval time.Duration) Option {
	return platform.WithAutosave(interval)
}

// WithWatch reloads the session when the store changes underneath it.
func WithWatch(enabled bool) Option {
	return platform.WithWatch(enabled)
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithIgnore adds patterns the fs watcher skips.
func WithIgnore(patterns ...string) Option {
	return platform.WithIgnore(patterns...)
}

// WithWriteErrorHandler registers a callback for failed store writes.
func WithWriteErrorHandler(fn func(error)) Option {
	return platform.WithWriteErrorHandler(fn)
}

// WithWatcherErrorHandler registers a callback for runtime watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New opens the notes stored at path and starts an editing session.
func New(ctx context.Context, path string, opts ...Option) (*App, error) {
	return platform.New(ctx, path, opts...)
}

// OpenStore opens the configured store without starting a session.
func OpenStore(ctx context.Context, path string, opts ...Option) (core.Store, error) {
	return platform.OpenStore(ctx, path, opts...)
}

// --- Utils ---

// LoadConfig reads a quire.yaml file.
func LoadConfig(path string) (Config, error) {
	return platform.LoadConfig(path)
}

// FindRoot looks upwards for a directory holding .quire or quire.yaml.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// ResolveDataDir picks the data directory for a session started in startDir.
func ResolveDataDir(startDir string) (string, error) {
	return platform.ResolveDataDir(startDir)
}
