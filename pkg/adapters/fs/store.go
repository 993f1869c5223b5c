// Package fs implements the blob store on the local filesystem: one JSON file
// per key, replaced atomically, with optional change notifications.
package fs

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/quire/pkg/core"
)

// FileExt is appended to a key to form its file name.
const FileExt = ".json"

// Config holds the configuration for the filesystem store.
type Config struct {
	Path      string       // Directory holding the blobs.
	MustExist bool         // Fail Initialize instead of creating Path.
	Logger    *slog.Logger // Defaults to a discard logger.

	// Ignore lists extra doublestar patterns, relative to Path, whose
	// changes the watcher never reports.
	Ignore []string
	// ErrorHandler receives watcher failures. Defaults to logging them.
	ErrorHandler func(error)
}

// Store implements core.Store and core.Watchable on a directory.
type Store struct {
	Path   string
	config Config

	mu        sync.RWMutex
	written   map[string][sha256.Size]byte // last self-written checksum per key
	writes    int
	watchers  int
	lastEvent *time.Time
}

// NewStore creates a filesystem store rooted at config.Path.
func NewStore(config Config) *Store {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		Path:    config.Path,
		config:  config,
		written: make(map[string][sha256.Size]byte),
	}
}

// Initialize prepares the directory.
func (s *Store) Initialize(ctx context.Context) error {
	if s.config.MustExist {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("store path does not exist: %s", s.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("store path is not a directory: %s", s.Path)
		}
		return nil
	}
	if err := os.MkdirAll(s.Path, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	return nil
}

// File returns the file a key is stored in.
func (s *Store) File(key string) string {
	return filepath.Join(s.Path, key+FileExt)
}

// Read implements core.Store.
func (s *Store) Read(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if err := validateKey(key); err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(s.File(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, true, nil
}

// Write implements core.Store.
func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}

	// Record before the rename so the watcher can recognize the event.
	sum := sha256.Sum256(data)
	s.mu.Lock()
	prev, hadPrev := s.written[key]
	s.written[key] = sum
	s.mu.Unlock()

	if err := replaceFile(s.File(key), data); err != nil {
		s.mu.Lock()
		if hadPrev {
			s.written[key] = prev
		} else {
			delete(s.written, key)
		}
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.writes++
	s.mu.Unlock()

	s.config.Logger.Debug("blob written", "key", key, "bytes", len(data))
	return nil
}

// selfWritten reports whether data is what this store last wrote under key.
func (s *Store) selfWritten(key string, data []byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, ok := s.written[key]
	return ok && sum == sha256.Sum256(data)
}

func validateKey(key string) error {
	if key == "" {
		return core.ErrEmptyKey
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid key %q: must be a plain file name", key)
	}
	return nil
}

var (
	_ core.Store     = (*Store)(nil)
	_ core.Watchable = (*Store)(nil)
)
