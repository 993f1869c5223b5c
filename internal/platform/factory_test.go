package platform_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/internal/platform"
	"github.com/aretw0/quire/pkg/adapters/fs"
	"github.com/aretw0/quire/pkg/adapters/memory"
	"github.com/aretw0/quire/pkg/adapters/sqlite"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/session"
)

func newApp(t *testing.T, uri string, opts ...platform.Option) *platform.App {
	t.Helper()
	app, err := platform.New(context.Background(), uri, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestNew_Backends(t *testing.T) {
	ctx := context.Background()

	t.Run("FS", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "notes")
		app := newApp(t, dir)
		assert.IsType(t, &fs.Store{}, app.Store)

		app.Controller.StartNew(ctx)
		app.Controller.Save(ctx, core.Draft{Title: "persisted"})
		assert.FileExists(t, filepath.Join(dir, core.DefaultKey+fs.FileExt))
	})

	t.Run("SQLite Directory", func(t *testing.T) {
		dir := t.TempDir()
		app := newApp(t, dir, platform.WithBackend(platform.BackendSQLite))
		assert.IsType(t, &sqlite.Store{}, app.Store)
		assert.FileExists(t, filepath.Join(dir, platform.SQLiteFile))
	})

	t.Run("Memory", func(t *testing.T) {
		app := newApp(t, "", platform.WithBackend(platform.BackendMemory))
		assert.IsType(t, &memory.Store{}, app.Store)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := platform.New(ctx, t.TempDir(), platform.WithBackend("s3"))
		assert.ErrorIs(t, err, core.ErrUnknownBackend)
	})

	t.Run("MustExist", func(t *testing.T) {
		_, err := platform.New(ctx, filepath.Join(t.TempDir(), "missing"), platform.WithMustExist(true))
		assert.Error(t, err)
	})
}

func TestNew_ReopensExistingNotes(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first := newApp(t, dir, platform.WithKey("custom"))
	first.Controller.StartNew(ctx)
	note, ok := first.Controller.Save(ctx, core.Draft{Title: "again"})
	require.True(t, ok)
	require.NoError(t, first.Close())

	second := newApp(t, dir, platform.WithKey("custom"))
	assert.Equal(t, session.ModeEditing, second.Controller.Mode())
	assert.Equal(t, note.ID, second.Controller.SelectedID())
}

func TestNew_InjectedCollaborators(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	app := newApp(t, "ignored",
		platform.WithStore(store),
		platform.WithClock(func() time.Time { return fixed }),
		platform.WithIDGenerator(func() string { return "note-1" }),
		platform.WithConfirmer(session.Always()),
	)
	assert.Same(t, store, app.Store)

	app.Controller.StartNew(ctx)
	note, _ := app.Controller.Save(ctx, core.Draft{Title: "x"})
	assert.Equal(t, "note-1", note.ID)
	assert.True(t, fixed.Equal(note.CreatedAt))

	assert.True(t, app.Controller.Delete(ctx, note.ID), "injected confirmer accepts")
}

// brokenStore accepts reads and rejects every write.
type brokenStore struct{ *memory.Store }

func (b *brokenStore) Write(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestNew_WriteErrorHandler(t *testing.T) {
	ctx := context.Background()
	var reported []error

	app := newApp(t, "",
		platform.WithStore(&brokenStore{Store: memory.NewStore()}),
		platform.WithWriteErrorHandler(func(err error) { reported = append(reported, err) }),
	)

	app.Controller.StartNew(ctx)
	_, ok := app.Controller.Save(ctx, core.Draft{Title: "kept in memory"})
	assert.True(t, ok)
	assert.Len(t, app.Controller.Notes(), 1)
	require.Len(t, reported, 1)
	assert.EqualError(t, reported[0], "disk full")
}

func TestNew_Autosave(t *testing.T) {
	t.Run("Short Interval Is Off", func(t *testing.T) {
		app := newApp(t, "", platform.WithBackend(platform.BackendMemory), platform.WithAutosave(10*time.Millisecond))
		assert.False(t, app.State().(platform.AppState).Autosave)
	})

	t.Run("Enabled", func(t *testing.T) {
		app := newApp(t, "", platform.WithBackend(platform.BackendMemory), platform.WithAutosave(time.Second))
		assert.True(t, app.State().(platform.AppState).Autosave)
	})
}

func TestNew_WatchFollowsExternalWrites(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	app := newApp(t, dir, platform.WithWatch(true))
	require.True(t, app.State().(platform.AppState).Following)

	// Another process writes the blob.
	time.Sleep(100 * time.Millisecond)
	other := core.NewRepository(fs.NewStore(fs.Config{Path: dir}), core.RepositoryConfig{})
	other.Load(ctx)
	other.Upsert(ctx, core.Draft{Title: "from elsewhere"})

	require.Eventually(t, func() bool {
		return len(app.Controller.Notes()) == 1
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, session.ModeEditing, app.Controller.Mode())
}

func TestApp_StateAndClose(t *testing.T) {
	app, err := platform.New(context.Background(), t.TempDir())
	require.NoError(t, err)

	state := app.State().(platform.AppState)
	assert.Contains(t, state.Components, "session")
	assert.Contains(t, state.Components, "repository")
	assert.Contains(t, state.Components, "fs-store")
	assert.Equal(t, "app", app.ComponentType())

	require.NoError(t, app.Close())
	require.NoError(t, app.Close())
}

func TestOpenStore(t *testing.T) {
	store, err := platform.OpenStore(context.Background(), filepath.Join(t.TempDir(), "x"))
	require.NoError(t, err)

	_, statErr := os.Stat(store.(*fs.Store).Path)
	assert.NoError(t, statErr)
}
