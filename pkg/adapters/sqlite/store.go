// Package sqlite implements the blob store as a single-table SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/aretw0/quire/pkg/adapters/sqlite/migrations"
	"github.com/aretw0/quire/pkg/core"
)

// goose keeps its configuration in package globals.
var migrateMu sync.Mutex

// Config holds the configuration for the SQLite store.
type Config struct {
	DSN    string       // File path or DSN, e.g. "notes.db" or ":memory:".
	Logger *slog.Logger // Defaults to a discard logger.
}

// Store implements core.Store on a SQLite database.
type Store struct {
	db     *sql.DB
	config Config

	mu     sync.Mutex
	writes int
	closed bool
}

// Open opens the database and migrates it to the current schema.
func Open(ctx context.Context, config Config) (*Store, error) {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	db, err := sql.Open("sqlite", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	config.Logger.Debug("sqlite store ready", "dsn", config.DSN)
	return &Store{db: db, config: config}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to migrate sqlite database: %w", err)
	}
	return nil
}

// Close releases the database. Later reads and writes fail with
// core.ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.db.Close()
}

func (s *Store) check(key string) error {
	if key == "" {
		return core.ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.ErrClosed
	}
	return nil
}

// Read implements core.Store.
func (s *Store) Read(ctx context.Context, key string) ([]byte, bool, error) {
	if err := s.check(key); err != nil {
		return nil, false, err
	}

	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read blob[%s]: %w", key, err)
	}
	return value, true, nil
}

// Write implements core.Store. The upsert is a single statement, so a blob
// is either fully replaced or left as it was.
func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	if err := s.check(key); err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to write blob[%s]: %w", key, err)
	}

	s.mu.Lock()
	s.writes++
	s.mu.Unlock()

	s.config.Logger.Debug("blob written", "key", key, "bytes", len(data))
	return nil
}

// StoreState exposes internal state for observability.
type StoreState struct {
	DSN       string `json:"dsn"`
	Writes    int    `json:"writes"`
	OpenConns int    `json:"open_conns"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return StoreState{
		DSN:       s.config.DSN,
		Writes:    s.writes,
		OpenConns: s.db.Stats().OpenConnections,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "sqlite-store"
}

var _ core.Store = (*Store)(nil)
var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
