// Package testutil holds helpers shared by client package tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/gigbook/internal/client/store"
	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/dmitrijs2005/gigbook/internal/logging"
	"github.com/stretchr/testify/require"
)

// NewEngine returns an Engine over a fresh database file in t.TempDir.
// The Engine is closed on cleanup.
func NewEngine(t *testing.T) *store.Engine {
	t.Helper()
	e := store.NewEngine(filepath.Join(t.TempDir(), "gigbook.db"), logging.Discard())
	t.Cleanup(func() { _ = e.Close() })
	return e
}

// NewDB opens a fully migrated database and returns its handle.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewEngine(t).Open(context.Background())
	require.NoError(t, err)
	return db
}

// InsertUser writes a bare users row so tests of dependent tables do not
// need the users repository.
func InsertUser(t *testing.T, db *sql.DB, id, email string) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO users (id, email, password_salt, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, email, []byte{0}, []byte{0}, time.Now().UnixMilli(),
	)
	require.NoError(t, err)
}

// InsertEvent writes an artist, a venue and an event on date and returns
// the event id.
func InsertEvent(t *testing.T, db *sql.DB, artist, venue string, date time.Time) int64 {
	t.Helper()
	now := time.Now().UnixMilli()

	artistKey, venueKey := common.FoldKey(artist), common.FoldKey(venue)

	_, err := db.Exec(`INSERT OR IGNORE INTO artists (name, name_key, created_at) VALUES (?, ?, ?)`, artist, artistKey, now)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT OR IGNORE INTO venues (name, name_key, created_at) VALUES (?, ?, ?)`, venue, venueKey, now)
	require.NoError(t, err)

	res, err := db.Exec(`
		INSERT INTO events (artist_id, venue_id, event_date, created_at)
		SELECT a.id, v.id, ?, ? FROM artists a, venues v
		WHERE a.name_key = ? AND v.name_key = ? AND v.city_key = ''
	`, date.UnixMilli(), now, artistKey, venueKey)
	require.NoError(t, err)

	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// Count returns the number of rows in table matching where.
func Count(t *testing.T, db *sql.DB, table, where string, args ...any) int {
	t.Helper()
	q := "SELECT COUNT(*) FROM " + table
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	require.NoError(t, db.QueryRow(q, args...).Scan(&n))
	return n
}
