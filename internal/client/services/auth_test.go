package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gigbook/internal/client/credentials"
	"github.com/dmitrijs2005/gigbook/internal/client/models"
	"github.com/dmitrijs2005/gigbook/internal/client/repositories"
	"github.com/dmitrijs2005/gigbook/internal/client/testutil"
	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/dmitrijs2005/gigbook/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*************
 * SignUp
 *************/

func TestSignUp_RemoteSuccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)

	require.NoError(t, f.session.SignUp(ctx, "  Ann@Example.com ", "password1", "ann"))

	snap := f.session.Snapshot()
	assert.Equal(t, StateAuthenticatedRemote, snap.State)
	require.NotNil(t, snap.User)
	assert.Equal(t, "srv-1", snap.User.ID)
	assert.Equal(t, "ann@example.com", snap.User.Email)
	assert.True(t, snap.User.IsRemote())
	require.NotNil(t, snap.Profile)
	assert.Equal(t, "ann", snap.Profile.Username)

	assert.Equal(t, "access-srv-1", f.creds.get(credentials.KeyAccessToken))
	assert.Equal(t, "access-srv-1", f.creds.get(credentials.KeyLegacyToken))
	assert.Equal(t, "refresh-srv-1", f.creds.get(credentials.KeyRefreshToken))
	assert.Equal(t, "srv-1", f.creds.get(credentials.KeySessionUserID))
}

func TestSignUp_OfflineFallsBackToLocal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	require.NoError(t, f.session.SignUp(ctx, "ann@example.com", "password1", "ann"))

	snap := f.session.Snapshot()
	assert.Equal(t, StateAuthenticatedLocal, snap.State)
	require.NotNil(t, snap.User)
	assert.False(t, snap.User.IsRemote())
	assert.Equal(t, 1, f.api.count("signup"), "remote is tried exactly once")

	assert.Empty(t, f.creds.get(credentials.KeyAccessToken))
	assert.Equal(t, snap.User.ID, f.creds.get(credentials.KeySessionUserID))
}

func TestSignUp_TwiceWithSameEmailIsDuplicate(t *testing.T) {
	for _, online := range []bool{false, true} {
		name := "offline"
		if online {
			name = "online"
		}
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, online)

			require.NoError(t, f.session.SignUp(ctx, "ann@example.com", "password1", "ann"))
			first := f.session.Snapshot()

			err := f.session.SignUp(ctx, "ANN@example.com", "password2", "other")
			require.ErrorIs(t, err, common.ErrDuplicate)

			snap := f.session.Snapshot()
			assert.Equal(t, first.State, snap.State)
			assert.NotEmpty(t, snap.Error)

			db, err := f.engine.Open(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, testutil.Count(t, db, "users", ""))
		})
	}
}

func TestSignUp_RemoteConflictIsSurfaced(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	f.api.register("ann@example.com", "elsewhere")

	err := f.session.SignUp(ctx, "ann@example.com", "password1", "ann")
	require.ErrorIs(t, err, common.ErrDuplicate)

	snap := f.session.Snapshot()
	assert.Equal(t, StateAnonymous, snap.State)
	assert.Equal(t, "That email or username is already in use.", snap.Error)

	db, err := f.engine.Open(ctx)
	require.NoError(t, err)
	assert.Zero(t, testutil.Count(t, db, "users", ""))
}

func TestSignUp_UsernameTakenLocally(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	require.NoError(t, f.session.SignUp(ctx, "ann@example.com", "password1", "ann"))
	require.NoError(t, f.session.SignOut(ctx))

	err := f.session.SignUp(ctx, "bob@example.com", "password1", "ANN")
	require.ErrorIs(t, err, common.ErrDuplicate)
	assert.Equal(t, StateAnonymous, f.session.Snapshot().State)
}

func TestSignUp_ValidationNeverReachesRemote(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		username string
		msg      string
	}{
		{"bad email", "not-an-email", "password1", "ann", "email must be a valid email address"},
		{"short password", "ann@example.com", "short", "ann", "password must be at least 8 characters"},
		{"missing username", "ann@example.com", "password1", " ", "username is required"},
		{"username symbols", "ann@example.com", "password1", "ann!", "username may only contain letters and digits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)

			err := f.session.SignUp(context.Background(), tt.email, tt.password, tt.username)
			require.ErrorIs(t, err, common.ErrValidation)

			assert.Equal(t, tt.msg, f.session.Snapshot().Error)
			assert.Zero(t, f.api.count("signup"))
		})
	}
}

/*************
 * SignIn
 *************/

func TestSignIn_OfflineSignUpThenOnlineSignInBindsLocalRow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	require.NoError(t, f.session.SignUp(ctx, "ann@example.com", "password1", "ann"))
	localID := f.session.Snapshot().User.ID

	shows := NewShowLog(f.engine, f.api, logging.Discard())
	_, err := shows.LogShow(ctx, f.session.Snapshot().User, ShowInput{
		EventInput: EventInput{ArtistName: "Coldplay", VenueName: "Wembley Stadium", City: "London", Date: time.Date(2023, 8, 20, 19, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)
	require.NoError(t, f.session.SignOut(ctx))

	// The account exists remotely, e.g. created on the web.
	serverID := f.api.register("ann@example.com", "password1")
	f.api.setOnline(true)

	require.NoError(t, f.session.SignIn(ctx, "Ann@example.com", "password1"))

	snap := f.session.Snapshot()
	assert.Equal(t, StateAuthenticatedRemote, snap.State)
	assert.Equal(t, localID, snap.User.ID)
	remote, ok := snap.User.Identity.(models.RemoteIdentity)
	require.True(t, ok)
	assert.Equal(t, serverID, remote.ServerID)
	assert.True(t, snap.HasLoggedFirstShow)
	assert.Equal(t, "ann", snap.Profile.Username)

	db, err := f.engine.Open(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, testutil.Count(t, db, "users", ""))
	assert.Equal(t, 1, testutil.Count(t, db, "user_logs", "user_id = ?", localID))
}

func TestSignIn_RemoteOnlyAccountCreatesRow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	serverID := f.api.register("bob@example.com", "password1")

	require.NoError(t, f.session.SignIn(ctx, "bob@example.com", "password1"))

	snap := f.session.Snapshot()
	assert.Equal(t, StateAuthenticatedRemote, snap.State)
	assert.Equal(t, serverID, snap.User.ID)
	require.NotNil(t, snap.Profile)

	db, err := f.engine.Open(ctx)
	require.NoError(t, err)
	u, err := repositories.New(db).Users.GetByID(ctx, serverID)
	require.NoError(t, err)
	assert.False(t, u.Password.Verify([]byte("password1")), "remote rows hold placeholder material")
}

func TestSignIn_OfflineUsesLocalPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	require.NoError(t, f.session.SignUp(ctx, "ann@example.com", "password1", "ann"))
	require.NoError(t, f.session.SignOut(ctx))

	err := f.session.SignIn(ctx, "ann@example.com", "wrong-password")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	snap := f.session.Snapshot()
	assert.Equal(t, StateAnonymous, snap.State)
	assert.Equal(t, "Incorrect email or password.", snap.Error)

	require.NoError(t, f.session.SignIn(ctx, "ann@example.com", "password1"))
	assert.Equal(t, StateAuthenticatedLocal, f.session.Snapshot().State)
	assert.Empty(t, f.session.Snapshot().Error)
}

func TestSignIn_UnknownEmailOffline(t *testing.T) {
	f := newFixture(t, false)

	err := f.session.SignIn(context.Background(), "nobody@example.com", "password1")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Equal(t, 1, f.api.count("login"))
}

/*************
 * SignOut
 *************/

func TestSignOut_RemoteClearsCredentialsAndKeepsData(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	require.NoError(t, f.session.SignUp(ctx, "ann@example.com", "password1", "ann"))

	require.NoError(t, f.session.SignOut(ctx))

	snap := f.session.Snapshot()
	assert.Equal(t, StateAnonymous, snap.State)
	assert.Nil(t, snap.User)
	assert.Nil(t, snap.Profile)
	assert.Equal(t, 1, f.api.count("logout"))
	for _, k := range credentials.AllKeys {
		assert.Empty(t, f.creds.get(k), k)
	}

	db, err := f.engine.Open(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, testutil.Count(t, db, "users", ""))
}

func TestSignOut_RemoteFailureStillSignsOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	require.NoError(t, f.session.SignUp(ctx, "ann@example.com", "password1", "ann"))
	f.api.setOnline(false)

	require.NoError(t, f.session.SignOut(ctx))
	assert.Equal(t, StateAnonymous, f.session.Snapshot().State)
}

func TestSignOut_LocalUserSkipsRemote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	require.NoError(t, f.session.SignUp(ctx, "ann@example.com", "password1", "ann"))

	require.NoError(t, f.session.SignOut(ctx))
	assert.Zero(t, f.api.count("logout"))
}

func TestSession_WithoutRemoteAPI(t *testing.T) {
	ctx := context.Background()
	s := NewSession(testutil.NewEngine(t), newMemStore(), nil, logging.Discard())

	require.NoError(t, s.SignUp(ctx, "ann@example.com", "password1", "ann"))
	assert.Equal(t, StateAuthenticatedLocal, s.Snapshot().State)
}
