package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gigbook/internal/api"
	"github.com/dmitrijs2005/gigbook/internal/client/credentials"
	"github.com/dmitrijs2005/gigbook/internal/client/models"
	"github.com/dmitrijs2005/gigbook/internal/client/repositories"
	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/dmitrijs2005/gigbook/internal/cryptox"
	"github.com/dmitrijs2005/gigbook/internal/dbx"
)

var errRemoteDisabled = errors.New("remote API not configured")

// SignUp creates an account. The remote API is tried first; when it cannot
// serve the request the account is created on-device instead, without a
// second remote attempt. An email or username already in use, locally or on
// the server, fails with common.ErrDuplicate.
func (s *Session) SignUp(ctx context.Context, email, password, username string) error {
	s.flow.Lock()
	defer s.flow.Unlock()

	req := api.SignUpRequest{
		Email:    common.NormalizeEmail(email),
		Password: password,
		Username: strings.TrimSpace(username),
	}
	if err := s.validate.Struct(req); err != nil {
		return s.fail(ctx, "sign-up", err)
	}

	db, err := s.ensureBootstrapped(ctx)
	if err != nil {
		return err
	}
	if err := checkAvailable(ctx, db, req.Email, req.Username); err != nil {
		return s.fail(ctx, "sign-up", err)
	}

	resp, rerr := s.remoteSignUp(ctx, req)
	if rerr == nil {
		user, err := s.completeRemote(ctx, resp, req.Email, req.Username)
		if err != nil {
			return s.fail(ctx, "sign-up", err)
		}
		return s.signedIn(ctx, db, user, StateAuthenticatedRemote)
	}
	if errors.Is(rerr, common.ErrDuplicate) {
		return s.fail(ctx, "sign-up", rerr)
	}
	s.logger.Warn(ctx, "remote sign-up failed, continuing on-device", "error", rerr)

	user, err := localSignUp(ctx, db, req)
	if err != nil {
		return s.fail(ctx, "sign-up", err)
	}
	return s.signedIn(ctx, db, user, StateAuthenticatedLocal)
}

// SignIn authenticates remotely when possible and falls back to the
// on-device password check once.
func (s *Session) SignIn(ctx context.Context, email, password string) error {
	s.flow.Lock()
	defer s.flow.Unlock()

	req := api.LoginRequest{Email: common.NormalizeEmail(email), Password: password}
	if err := s.validate.Struct(req); err != nil {
		return s.fail(ctx, "sign-in", err)
	}

	db, err := s.ensureBootstrapped(ctx)
	if err != nil {
		return err
	}

	resp, rerr := s.remoteLogin(ctx, req)
	if rerr == nil {
		user, err := s.completeRemote(ctx, resp, req.Email, "")
		if err != nil {
			return s.fail(ctx, "sign-in", err)
		}
		return s.signedIn(ctx, db, user, StateAuthenticatedRemote)
	}
	s.logger.Warn(ctx, "remote sign-in failed, continuing on-device", "error", rerr)

	user, err := localSignIn(ctx, db, req)
	if err != nil {
		return s.fail(ctx, "sign-in", err)
	}
	return s.signedIn(ctx, db, user, StateAuthenticatedLocal)
}

// SignOut revokes the remote session on a best-effort basis, clears the
// credential store and forgets the user. Local domain data is kept.
func (s *Session) SignOut(ctx context.Context) error {
	s.flow.Lock()
	defer s.flow.Unlock()

	cur := s.Snapshot()
	if cur.User != nil && cur.User.IsRemote() && s.api != nil {
		if err := s.api.Logout(ctx); err != nil {
			s.logger.Warn(ctx, "remote logout failed", "error", err)
		}
	}

	err := credentials.DeleteAll(ctx, s.creds, credentials.AllKeys...)
	if err != nil {
		s.logger.Error(ctx, "clearing credentials failed", "error", err)
	}

	s.publish(func(sn *Snapshot) { *sn = Snapshot{State: StateAnonymous} })
	s.logger.Info(ctx, "signed out")
	return err
}

func (s *Session) remoteSignUp(ctx context.Context, req api.SignUpRequest) (*api.AuthResponse, error) {
	if s.api == nil {
		return nil, errRemoteDisabled
	}
	return s.api.SignUp(ctx, req)
}

func (s *Session) remoteLogin(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error) {
	if s.api == nil {
		return nil, errRemoteDisabled
	}
	return s.api.Login(ctx, req)
}

// completeRemote persists the issued tokens and reconciles the remote
// identity onto a local row.
func (s *Session) completeRemote(ctx context.Context, resp *api.AuthResponse, email, username string) (*models.User, error) {
	if resp.User.ID == "" || resp.AccessToken == "" {
		return nil, fmt.Errorf("incomplete auth response: %w", common.ErrServer)
	}
	if resp.User.Email != "" {
		email = resp.User.Email
	}
	if username == "" {
		username = resp.User.Username
	}

	if err := credentials.SaveTokens(ctx, s.creds, resp.AccessToken, resp.RefreshToken); err != nil {
		return nil, err
	}

	user, err := s.reconciler.UpsertUserFromRemote(ctx, resp.User.ID, email)
	if err != nil {
		if perr := credentials.DeleteAll(ctx, s.creds, credentials.TokenKeys...); perr != nil {
			s.logger.Warn(ctx, "purging tokens failed", "error", perr)
		}
		return nil, err
	}

	if username != "" {
		s.adoptUsername(ctx, user.ID, username)
	}
	return user, nil
}

// adoptUsername sets username on a profile that has none yet.
func (s *Session) adoptUsername(ctx context.Context, userID, username string) {
	db, err := s.db.Open(ctx)
	if err != nil {
		return
	}
	repos := repositories.New(db)

	p, err := repos.Profiles.Get(ctx, userID)
	if err != nil || p.Username != "" {
		return
	}
	if _, err := repos.Profiles.Update(ctx, userID, models.ProfileUpdate{Username: &username}); err != nil {
		s.logger.Warn(ctx, "could not set username from remote account", "error", err)
	}
}

// signedIn records user as the session user and publishes the new state.
func (s *Session) signedIn(ctx context.Context, db *sql.DB, user *models.User, state State) error {
	if err := s.creds.Set(ctx, credentials.KeySessionUserID, user.ID); err != nil {
		return s.fail(ctx, "save session", err)
	}
	if state == StateAuthenticatedLocal {
		// Tokens of an earlier remote session must not authenticate this user.
		if err := credentials.DeleteAll(ctx, s.creds, credentials.TokenKeys...); err != nil {
			s.logger.Warn(ctx, "clearing stale tokens failed", "error", err)
		}
	}

	snap, err := s.loadSnapshot(ctx, db, user, state)
	if err != nil {
		return s.fail(ctx, "load profile", err)
	}

	s.publish(func(sn *Snapshot) { *sn = snap })
	s.logger.Info(ctx, "signed in", "user_id", user.ID, "state", state.String())
	return nil
}

// fail logs err, publishes its user-facing message and returns it.
// The state is left unchanged.
func (s *Session) fail(ctx context.Context, op string, err error) error {
	if errors.Is(err, common.ErrValidation) || errors.Is(err, common.ErrDuplicate) || errors.Is(err, common.ErrInvalidCredentials) {
		s.logger.Info(ctx, op+" rejected", "error", err)
	} else {
		s.logger.Error(ctx, op+" failed", "error", err)
	}
	s.publishError(userMessage(err))
	return err
}

func checkAvailable(ctx context.Context, db *sql.DB, email, username string) error {
	repos := repositories.New(db)

	_, err := repos.Users.GetByEmail(ctx, email)
	if err == nil {
		return fmt.Errorf("email %s: %w", email, common.ErrDuplicate)
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	taken, err := repos.Profiles.UsernameTaken(ctx, username, "")
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("username %s: %w", username, common.ErrDuplicate)
	}
	return nil
}

func localSignUp(ctx context.Context, db *sql.DB, req api.SignUpRequest) (*models.User, error) {
	u := &models.User{
		ID:       models.NewLocalUserID(),
		Email:    req.Email,
		Password: cryptox.HashPassword([]byte(req.Password)),
	}

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repos := repositories.New(tx)
		if err := repos.Users.Create(ctx, u); err != nil {
			return err
		}
		return repos.Profiles.Ensure(ctx, u.ID, req.Username)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func localSignIn(ctx context.Context, db *sql.DB, req api.LoginRequest) (*models.User, error) {
	u, err := repositories.New(db).Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !u.Password.Verify([]byte(req.Password)) {
		return nil, common.ErrInvalidCredentials
	}
	return u, nil
}
