package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/quire/pkg/core"
)

// DebounceDelay is how long the watcher waits for a burst of filesystem
// events on one key to settle.
const DebounceDelay = 50 * time.Millisecond

// defaultIgnore is always applied on top of Config.Ignore.
var defaultIgnore = []string{TempFilePrefix + "*", ".*.swp", "*~"}

// Watch implements core.Watchable. It reports changes to key made by other
// processes; writes performed through this store are filtered out by
// checksum. The returned channel is closed once ctx is done.
func (s *Store) Watch(ctx context.Context, key string) (<-chan core.Event, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	return s.watch(ctx, func(k string) bool { return k == key })
}

// WatchPattern is like Watch but reports every key matching the doublestar
// pattern, e.g. "notes.*".
func (s *Store) WatchPattern(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}
	return s.watch(ctx, func(k string) bool {
		ok, _ := doublestar.Match(pattern, k)
		return ok
	})
}

func (s *Store) watch(ctx context.Context, match func(key string) bool) (<-chan core.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, p := range s.config.Ignore {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid ignore pattern %q", p)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// The directory is watched rather than the file, which is replaced on
	// every atomic write.
	if err := watcher.Add(s.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.Path, err)
	}

	events := make(chan core.Event)
	w := &watchWorker{
		store:     s,
		match:     match,
		watcher:   watcher,
		events:    events,
		debouncer: newDebouncer(DebounceDelay),
	}
	s.trackWatcher(1)

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		s.reportError(fmt.Errorf("watcher stopped: %w", err))
	}))
	return events, nil
}

type watchWorker struct {
	store     *Store
	match     func(key string) bool
	watcher   *fsnotify.Watcher
	events    chan core.Event
	debouncer *debouncer
}

func (w *watchWorker) run(ctx context.Context) (err error) {
	logger := w.store.config.Logger

	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				logger.Error("watcher panic", "error", err)
			}
		}
	}()
	defer close(w.events)
	defer w.store.trackWatcher(-1)
	defer w.watcher.Close()

	err = w.loop(ctx)

	// Every in-flight emit must finish before events is closed.
	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *watchWorker) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher events channel closed")
			}
			w.process(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher errors channel closed")
			}
			w.store.reportError(err)
		}
	}
}

// process filters, maps and debounces a raw filesystem event.
func (w *watchWorker) process(ctx context.Context, event fsnotify.Event) {
	logger := w.store.config.Logger
	logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	name := filepath.Base(event.Name)
	if w.store.shouldIgnore(name) || !strings.HasSuffix(name, FileExt) {
		return
	}
	key := strings.TrimSuffix(name, FileExt)
	if !w.match(key) {
		return
	}

	eType := mapEventType(event)
	if eType == "" {
		return
	}

	w.debouncer.add(core.Event{
		Type:      eType,
		Key:       key,
		Timestamp: time.Now().Unix(),
	}, func(e core.Event) {
		w.emit(ctx, e)
	})
}

// emit delivers e unless the file on disk is exactly what this store wrote.
func (w *watchWorker) emit(ctx context.Context, e core.Event) {
	if e.Type != core.EventDelete {
		data, err := os.ReadFile(w.store.File(e.Key))
		switch {
		case errors.Is(err, os.ErrNotExist):
			e.Type = core.EventDelete
		case err != nil:
			w.store.reportError(fmt.Errorf("failed to inspect %s: %w", e.Key, err))
			return
		case w.store.selfWritten(e.Key, data):
			w.store.config.Logger.Debug("ignoring self-generated change", "key", e.Key)
			return
		}
	}

	w.store.recordEvent()
	select {
	case w.events <- e:
	case <-ctx.Done():
	}
}

func (s *Store) shouldIgnore(name string) bool {
	for _, patterns := range [][]string{defaultIgnore, s.config.Ignore} {
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, name); ok {
				return true
			}
		}
	}
	return false
}

func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	}
	return ""
}

func (s *Store) reportError(err error) {
	if s.config.ErrorHandler != nil {
		s.config.ErrorHandler(err)
		return
	}
	s.config.Logger.Error("watcher error", "error", err)
}
