package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/adapters/sqlite"
	"github.com/aretw0/quire/pkg/core"
)

func openStore(t *testing.T, dsn string) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), sqlite.Config{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_ReadMissing(t *testing.T) {
	store := openStore(t, ":memory:")

	v, found, err := store.Read(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, v)
}

func TestStore_WriteUpserts(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, ":memory:")

	require.NoError(t, store.Write(ctx, "k", []byte("old")))
	require.NoError(t, store.Write(ctx, "k", []byte("new")))

	v, found, err := store.Read(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("new"), v)

	state := store.State().(sqlite.StoreState)
	assert.Equal(t, 2, state.Writes)
}

func TestStore_EmptyKey(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, ":memory:")

	assert.ErrorIs(t, store.Write(ctx, "", []byte("x")), core.ErrEmptyKey)
	_, _, err := store.Read(ctx, "")
	assert.ErrorIs(t, err, core.ErrEmptyKey)
}

func TestStore_PersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "notes.db")

	first, err := sqlite.Open(ctx, sqlite.Config{DSN: dsn})
	require.NoError(t, err)

	repo := core.NewRepository(first, core.RepositoryConfig{})
	repo.Load(ctx)
	_, note := repo.Upsert(ctx, core.Draft{Title: "kept"})
	require.NoError(t, first.Close())

	// Reopening runs the migrations again; they must be idempotent.
	second := openStore(t, dsn)
	loaded := core.NewRepository(second, core.RepositoryConfig{}).Load(ctx)
	require.Len(t, loaded, 1)
	assert.Equal(t, note.ID, loaded[0].ID)
	assert.Equal(t, "kept", loaded[0].Title)
}

func TestStore_ComponentType(t *testing.T) {
	store := openStore(t, ":memory:")
	assert.Equal(t, "sqlite-store", store.ComponentType())
}

func TestStore_Closed(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.Open(ctx, sqlite.Config{DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.Write(ctx, "k", []byte("v")), core.ErrClosed)
	_, _, err = store.Read(ctx, "k")
	assert.ErrorIs(t, err, core.ErrClosed)
}
