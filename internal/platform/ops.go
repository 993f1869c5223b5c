package platform

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/aretw0/quire/pkg/adapters/fs"
	"github.com/aretw0/quire/pkg/adapters/memory"
	"github.com/aretw0/quire/pkg/adapters/sqlite"
	"github.com/aretw0/quire/pkg/core"
)

// SQLiteFile is the database file name used by the sqlite backend inside the
// data directory.
const SQLiteFile = "notes.db"

// OpenStore creates and initializes the store selected by the options.
// The uri argument is backend-specific: a directory for "fs" and "sqlite",
// ignored for "memory".
func OpenStore(ctx context.Context, uri string, opts ...Option) (core.Store, error) {
	return openStore(ctx, uri, applyOptions(opts))
}

func openStore(ctx context.Context, uri string, o *options) (core.Store, error) {
	if o.store != nil {
		return o.store, nil
	}

	switch o.backend {
	case BackendFS:
		store := fs.NewStore(fs.Config{
			Path:         uri,
			MustExist:    o.mustExist,
			Logger:       o.logger,
			Ignore:       o.ignore,
			ErrorHandler: o.watcherErrorHandler,
		})
		if err := store.Initialize(ctx); err != nil {
			return nil, err
		}
		return store, nil

	case BackendSQLite:
		dsn := uri
		if uri != ":memory:" && filepath.Ext(uri) == "" {
			// A directory: keep the database inside it.
			dir := fs.NewStore(fs.Config{Path: uri, MustExist: o.mustExist})
			if err := dir.Initialize(ctx); err != nil {
				return nil, err
			}
			dsn = filepath.Join(uri, SQLiteFile)
		}
		return sqlite.Open(ctx, sqlite.Config{DSN: dsn, Logger: o.logger})

	case BackendMemory:
		return memory.NewStore(), nil
	}

	return nil, fmt.Errorf("%w: %q", core.ErrUnknownBackend, o.backend)
}
