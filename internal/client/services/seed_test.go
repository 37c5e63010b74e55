package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gigbook/internal/client/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCatalog_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)

	require.NoError(t, SeedCatalog(ctx, db))
	require.NoError(t, SeedCatalog(ctx, db))

	assert.Equal(t, len(seedArtists), testutil.Count(t, db, "artists", ""))
	assert.Equal(t, len(seedVenues), testutil.Count(t, db, "venues", ""))
}

func TestSeedCatalog_KeepsExistingRows(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	_, err := db.Exec(`INSERT INTO artists (name, name_key, created_at) VALUES ('drake', 'drake', 1)`)
	require.NoError(t, err)

	require.NoError(t, SeedCatalog(ctx, db))

	var name string
	require.NoError(t, db.QueryRow(`SELECT name FROM artists WHERE name_key = 'drake'`).Scan(&name))
	assert.Equal(t, "drake", name)
	assert.Equal(t, len(seedArtists), testutil.Count(t, db, "artists", ""))
}
