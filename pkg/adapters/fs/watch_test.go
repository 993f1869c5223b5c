package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/adapters/fs"
	"github.com/aretw0/quire/pkg/core"
)

// setupWatchTest returns a store, a watch on key and the test context.
func setupWatchTest(t *testing.T, key string) (*fs.Store, <-chan core.Event, context.Context) {
	t.Helper()
	store := newStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	events, err := store.Watch(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, events)

	// Give the watcher goroutine time to start.
	time.Sleep(100 * time.Millisecond)
	return store, events, ctx
}

func TestWatch_ExternalWrite(t *testing.T) {
	store, events, ctx := setupWatchTest(t, core.DefaultKey)

	require.NoError(t, os.WriteFile(store.File(core.DefaultKey), []byte("[]"), 0o644))

	select {
	case e := <-events:
		assert.Equal(t, core.DefaultKey, e.Key)
		assert.NotEqual(t, core.EventDelete, e.Type)
	case <-ctx.Done():
		t.Fatal("Timed out waiting for event")
	}
}

func TestWatch_IgnoreSelf(t *testing.T) {
	store, events, ctx := setupWatchTest(t, core.DefaultKey)

	require.NoError(t, store.Write(ctx, core.DefaultKey, []byte("[]")))

	select {
	case e := <-events:
		t.Fatalf("Received event for self-generated write: %v", e)
	case <-time.After(500 * time.Millisecond):
	}

	// A different external payload must still be reported.
	require.NoError(t, os.WriteFile(store.File(core.DefaultKey), []byte(`[{"id":"x"}]`), 0o644))
	select {
	case e := <-events:
		assert.Equal(t, core.DefaultKey, e.Key)
	case <-ctx.Done():
		t.Fatal("Timed out waiting for external event")
	}
}

func TestWatch_Debounce(t *testing.T) {
	store, events, ctx := setupWatchTest(t, core.DefaultKey)

	for i := range 5 {
		data := []byte{'[', ']', byte('0' + i)}
		require.NoError(t, os.WriteFile(store.File(core.DefaultKey), data, 0o644))
	}

	select {
	case <-events:
	case <-ctx.Done():
		t.Fatal("Timed out waiting for event")
	}

	select {
	case e := <-events:
		t.Fatalf("burst should coalesce into one event, got extra %v", e)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatch_Delete(t *testing.T) {
	store := newStore(t)
	require.NoError(t, os.WriteFile(store.File("k"), []byte("x"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	events, err := store.Watch(ctx, "k")
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.Remove(store.File("k")))

	select {
	case e := <-events:
		assert.Equal(t, core.EventDelete, e.Type)
	case <-ctx.Done():
		t.Fatal("Timed out waiting for delete event")
	}
}

func TestWatch_FiltersOtherFiles(t *testing.T) {
	store, events, _ := setupWatchTest(t, core.DefaultKey)

	require.NoError(t, os.WriteFile(store.File("other"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(store.Path, core.DefaultKey+".swp"), []byte("x"), 0o644))

	select {
	case e := <-events:
		t.Fatalf("unexpected event %v", e)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchPattern(t *testing.T) {
	store := fs.NewStore(fs.Config{Path: t.TempDir(), Ignore: []string{"notes.draft*"}})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := store.WatchPattern(ctx, "notes.[")
	require.Error(t, err, "malformed pattern")

	events, err := store.WatchPattern(ctx, "notes.*")
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(store.File("notes.draft"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(store.File("notes.v2"), []byte("x"), 0o644))

	select {
	case e := <-events:
		assert.Equal(t, "notes.v2", e.Key)
	case <-ctx.Done():
		t.Fatal("Timed out waiting for event")
	}
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	store := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	events, err := store.Watch(ctx, "k")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return store.State().(fs.StoreState).Watchers == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool {
		_, open := <-events
		return !open
	}, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return store.State().(fs.StoreState).Watchers == 0
	}, time.Second, 10*time.Millisecond)
}
