// Package store owns the local SQLite database: one cached handle per
// Engine, schema initialization through embedded goose migrations, and a
// Reset that destroys the database file.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/gigbook/internal/client/migrations"
	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/dmitrijs2005/gigbook/internal/logging"
	"github.com/pressly/goose/v3"
	"golang.org/x/sync/singleflight"

	_ "modernc.org/sqlite"
)

const openKey = "open"

// Engine owns a single connection handle to the database file at path.
// It is created at the application root and passed down; it is safe for
// concurrent use.
type Engine struct {
	path   string
	logger logging.Logger

	mu  sync.Mutex
	db  *sql.DB
	gen uint64

	group singleflight.Group
}

// NewEngine returns an Engine for the database file at path. Nothing is
// opened until the first Open call.
func NewEngine(path string, logger logging.Logger) *Engine {
	return &Engine{path: path, logger: logger.With("component", "store")}
}

// Path returns the database file location.
func (e *Engine) Path() string {
	return e.path
}

// Open returns the cached handle, initializing it on first use. Concurrent
// first callers share one initialization. Every failure wraps
// common.ErrStorage and leaves no handle behind.
func (e *Engine) Open(ctx context.Context) (*sql.DB, error) {
	if db, _ := e.cached(); db != nil {
		return db, nil
	}

	v, err, _ := e.group.Do(openKey, func() (any, error) {
		db, gen := e.cached()
		if db != nil {
			return db, nil
		}

		// One caller's cancellation must not fail the others waiting on it.
		db, err := e.open(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		e.mu.Lock()
		defer e.mu.Unlock()
		if e.gen != gen {
			// Reset ran while we were opening; the file we opened is gone.
			_ = db.Close()
			return nil, fmt.Errorf("%w: database was reset while opening", common.ErrStorage)
		}
		e.db = db
		return db, nil
	})
	if err != nil {
		e.logger.Error(ctx, "database open failed", "path", e.path, "error", err)
		return nil, err
	}
	return v.(*sql.DB), nil
}

func (e *Engine) cached() (*sql.DB, uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.db, e.gen
}

func (e *Engine) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(e.path), 0o700); err != nil {
		return nil, fmt.Errorf("%w: create data directory: %w", common.ErrStorage, err)
	}

	db, err := sql.Open("sqlite", dsn(e.path))
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", common.ErrStorage, err)
	}

	// One writer, one handle: SQLite serializes writes anyway and a single
	// connection keeps per-connection pragmas consistent.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping database: %w", common.ErrStorage, err)
	}

	if err := InitSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: init schema: %w", common.ErrStorage, err)
	}

	e.logger.Info(ctx, "database ready", "path", e.path)
	return db, nil
}

func dsn(path string) string {
	return path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

// InitSchema applies the embedded migrations. It is idempotent.
func InitSchema(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close closes the cached handle, if any. A later Open reopens the file.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	e.gen++
	return err
}

// Reset closes the handle and deletes the database file with its WAL
// siblings. The next Open starts from an empty schema.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.gen++
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			e.logger.Warn(ctx, "closing database before reset failed", "error", err)
		}
		e.db = nil
	}
	e.group.Forget(openKey)

	for _, p := range []string{e.path, e.path + "-wal", e.path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: remove %s: %w", common.ErrStorage, p, err)
		}
	}

	e.logger.Info(ctx, "local database reset", "path", e.path)
	return nil
}
