package platform

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/session"
)

// App is a wired editing session: store, repository and controller, plus the
// background workers requested through options.
type App struct {
	Store      core.Store
	Repository *core.Repository
	Controller *session.Controller

	logger    *slog.Logger
	cancel    context.CancelFunc
	autosave  bool
	following bool

	closeOnce sync.Once
	closeErr  error
}

// New opens the store at uri, loads the collection and starts the session.
//
//	app, err := quire.New(ctx, "./notes", quire.WithAutosave(5*time.Second))
//
// The background workers (autosave, store follower) run until Close.
func New(ctx context.Context, uri string, opts ...Option) (*App, error) {
	o := applyOptions(opts)
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	store, err := openStore(ctx, uri, o)
	if err != nil {
		return nil, err
	}

	repo := core.NewRepository(store, core.RepositoryConfig{
		Key:               o.key,
		Logger:            o.logger,
		Now:               o.now,
		NewID:             o.newID,
		WriteErrorHandler: o.writeErrorHandler,
	})
	repo.Load(ctx)

	ctrl := session.NewController(repo, session.Config{
		Confirmer: o.confirmer,
		Logger:    o.logger,
	})

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	app := &App{
		Store:      store,
		Repository: repo,
		Controller: ctrl,
		logger:     o.logger,
		cancel:     cancel,
	}

	if o.autosave != 0 {
		app.autosave = session.Autosave(runCtx, ctrl, o.autosave)
		if !app.autosave {
			o.logger.Warn("autosave disabled, interval too short", "interval", o.autosave, "min", session.MinAutosaveInterval)
		}
	}

	if o.watch {
		if w, ok := store.(core.Watchable); ok {
			events, err := w.Watch(runCtx, o.key)
			if err != nil {
				_ = app.Close()
				return nil, err
			}
			session.Follow(runCtx, ctrl, events)
			app.following = true
		} else {
			o.logger.Debug("store cannot be watched, external changes need a refresh", "backend", o.backend)
		}
	}

	o.logger.Debug("session ready", "backend", o.backend, "key", o.key, "notes", repo.Len())
	return app, nil
}

// Close stops the background workers and releases the store. It is safe to
// call more than once.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		a.cancel()
		if c, ok := a.Store.(io.Closer); ok {
			a.closeErr = c.Close()
		}
	})
	return a.closeErr
}

// Components lists every introspectable part of the session.
func (a *App) Components() []introspection.Introspectable {
	out := []introspection.Introspectable{a.Controller, a.Repository}
	if s, ok := a.Store.(introspection.Introspectable); ok {
		out = append(out, s)
	}
	return out
}

// AppState exposes internal state for observability.
type AppState struct {
	Autosave   bool           `json:"autosave"`
	Following  bool           `json:"following"`
	Components map[string]any `json:"components"`
}

// State implements introspection.Introspectable.
func (a *App) State() any {
	state := AppState{
		Autosave:   a.autosave,
		Following:  a.following,
		Components: make(map[string]any),
	}
	for _, c := range a.Components() {
		name := "store"
		if comp, ok := c.(introspection.Component); ok {
			name = comp.ComponentType()
		}
		state.Components[name] = c.State()
	}
	return state
}

// ComponentType implements introspection.Component.
func (a *App) ComponentType() string {
	return "app"
}

var _ introspection.Introspectable = (*App)(nil)
var _ introspection.Component = (*App)(nil)
