package profiles

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/gigbook/internal/client/models"
	"github.com/dmitrijs2005/gigbook/internal/client/testutil"
	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*sql.DB, *SQLiteRepository) {
	t.Helper()
	db := testutil.NewDB(t)
	testutil.InsertUser(t, db, "u1", "u1@example.com")
	testutil.InsertUser(t, db, "u2", "u2@example.com")
	return db, NewSQLiteRepository(db)
}

func ptr[T any](v T) *T { return &v }

func TestEnsure_CreatesOnceAndKeepsExisting(t *testing.T) {
	db, r := setup(t)
	ctx := context.Background()

	require.NoError(t, r.Ensure(ctx, "u1", "gigfan"))
	require.NoError(t, r.Ensure(ctx, "u1", "other"))

	assert.Equal(t, 1, testutil.Count(t, db, "user_profiles", "user_id = ?", "u1"))

	p, err := r.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "gigfan", p.Username)
	assert.False(t, p.OnboardingCompleted)
}

func TestEnsure_WithoutUsernameAllowsMany(t *testing.T) {
	_, r := setup(t)
	ctx := context.Background()

	require.NoError(t, r.Ensure(ctx, "u1", ""))
	require.NoError(t, r.Ensure(ctx, "u2", "  "))

	p, err := r.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, p.Username)
}

func TestEnsure_UsernameTakenCaseInsensitive(t *testing.T) {
	_, r := setup(t)
	ctx := context.Background()

	require.NoError(t, r.Ensure(ctx, "u1", "GigFan"))
	require.ErrorIs(t, r.Ensure(ctx, "u2", "gigfan"), common.ErrDuplicate)

	taken, err := r.UsernameTaken(ctx, "GIGFAN", "u2")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = r.UsernameTaken(ctx, "gigfan", "u1")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestEnsure_UsernameTakenNonASCII(t *testing.T) {
	_, r := setup(t)
	ctx := context.Background()

	require.NoError(t, r.Ensure(ctx, "u1", "Zoë"))
	require.ErrorIs(t, r.Ensure(ctx, "u2", "ZOË"), common.ErrDuplicate)

	taken, err := r.UsernameTaken(ctx, "zoë", "u2")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestGet_NotFound(t *testing.T) {
	_, r := setup(t)
	_, err := r.Get(context.Background(), "u1")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdate_AppliesOnlySetFields(t *testing.T) {
	_, r := setup(t)
	ctx := context.Background()
	require.NoError(t, r.Ensure(ctx, "u1", "gigfan"))

	p, err := r.Update(ctx, "u1", models.ProfileUpdate{
		DisplayName:    ptr(" Gig Fan "),
		City:           ptr("Riga"),
		ConnectedMusic: &models.ConnectedMusic{Spotify: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "Gig Fan", p.DisplayName)
	assert.Equal(t, "Riga", p.City)
	assert.Equal(t, "gigfan", p.Username)
	assert.True(t, p.ConnectedMusic.Spotify)
	assert.False(t, p.ConnectedMusic.AppleMusic)

	p, err = r.Update(ctx, "u1", models.ProfileUpdate{Bio: ptr("hi"), Username: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "hi", p.Bio)
	assert.Equal(t, "Gig Fan", p.DisplayName)
	assert.Empty(t, p.Username)
}

func TestUpdate_Errors(t *testing.T) {
	_, r := setup(t)
	ctx := context.Background()
	require.NoError(t, r.Ensure(ctx, "u1", "taken"))
	require.NoError(t, r.Ensure(ctx, "u2", ""))

	_, err := r.Update(ctx, "u2", models.ProfileUpdate{Username: ptr("Taken")})
	require.ErrorIs(t, err, common.ErrDuplicate)

	_, err = r.Update(ctx, "nobody", models.ProfileUpdate{Bio: ptr("x")})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestCompleteOnboarding(t *testing.T) {
	_, r := setup(t)
	ctx := context.Background()
	require.NoError(t, r.Ensure(ctx, "u1", ""))

	require.NoError(t, r.CompleteOnboarding(ctx, "u1"))
	p, err := r.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, p.OnboardingCompleted)

	require.ErrorIs(t, r.CompleteOnboarding(ctx, "u2"), common.ErrNotFound)
}
