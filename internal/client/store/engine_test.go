package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/dmitrijs2005/gigbook/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(filepath.Join(t.TempDir(), "data", "gigbook.db"), logging.Discard())
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestOpen_CreatesFileAndSchema(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	db, err := e.Open(ctx)
	require.NoError(t, err)

	_, err = os.Stat(e.Path())
	require.NoError(t, err, "database file must exist after Open")

	for _, table := range []string{"users", "user_profiles", "artists", "venues", "events",
		"user_logs", "user_tickets", "user_interested", "goose_db_version"} {
		assert.True(t, tableExists(t, db, table), "missing table %s", table)
	}
}

func TestOpen_EnablesWALAndForeignKeys(t *testing.T) {
	e := newEngine(t)
	db, err := e.Open(context.Background())
	require.NoError(t, err)

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpen_ReturnsSameHandle(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	db1, err := e.Open(ctx)
	require.NoError(t, err)
	db2, err := e.Open(ctx)
	require.NoError(t, err)

	assert.Same(t, db1, db2)
}

func TestOpen_ConcurrentCallersShareOneHandle(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	const n = 16
	handles := make([]*sql.DB, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i], errs[i] = e.Open(ctx)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, handles[0], handles[i])
	}
}

func TestInitSchema_IsIdempotent(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	db, err := e.Open(ctx)
	require.NoError(t, err)

	require.NoError(t, InitSchema(ctx, db))
	require.NoError(t, InitSchema(ctx, db))
}

func TestOpen_UnavailableStorageFailsLoudly(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	e := NewEngine(filepath.Join(blocker, "gigbook.db"), logging.Discard())

	db, err := e.Open(context.Background())
	require.Error(t, err)
	assert.Nil(t, db)
	assert.ErrorIs(t, err, common.ErrStorage)

	cached, _ := e.cached()
	assert.Nil(t, cached, "a failed open must not cache a handle")
}

func TestReset_DeletesFileAndReinitializes(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	db, err := e.Open(ctx)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO artists(name, name_key, created_at) VALUES ('Drake', 'drake', 0)`)
	require.NoError(t, err)

	require.NoError(t, e.Reset(ctx))

	_, err = os.Stat(e.Path())
	assert.True(t, os.IsNotExist(err), "database file must be removed by Reset")

	db2, err := e.Open(ctx)
	require.NoError(t, err)
	assert.NotSame(t, db, db2)

	var n int
	require.NoError(t, db2.QueryRow(`SELECT COUNT(*) FROM artists`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestReset_WithoutOpenIsNoop(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.Reset(context.Background()))
}
