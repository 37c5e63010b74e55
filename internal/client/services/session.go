package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gigbook/internal/client/client"
	"github.com/dmitrijs2005/gigbook/internal/client/credentials"
	"github.com/dmitrijs2005/gigbook/internal/client/models"
	"github.com/dmitrijs2005/gigbook/internal/client/repositories"
	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/dmitrijs2005/gigbook/internal/logging"
	"github.com/dmitrijs2005/gigbook/internal/validation"
)

// State is the session lifecycle position.
type State int

const (
	StateUninitialized State = iota
	StateBootstrapping
	StateAnonymous
	StateAuthenticatedLocal
	StateAuthenticatedRemote
	// StateError is entered only when bootstrap cannot open local storage.
	StateError
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateBootstrapping:
		return "bootstrapping"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticatedLocal:
		return "authenticated_local"
	case StateAuthenticatedRemote:
		return "authenticated_remote"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Authenticated reports whether a user is signed in.
func (s State) Authenticated() bool {
	return s == StateAuthenticatedLocal || s == StateAuthenticatedRemote
}

// Snapshot is the consolidated session view handed to the UI layer.
type Snapshot struct {
	State              State
	User               *models.CurrentUser
	Profile            *models.Profile
	HasLoggedFirstShow bool
	// Error is a user-facing message; empty when the last operation succeeded.
	Error string
}

// Session is the single writer of session state. It is safe for concurrent
// use; state-changing operations are serialized.
type Session struct {
	db         Database
	creds      credentials.Store
	api        client.Client
	reconciler *Reconciler
	validate   *validation.Validator
	logger     logging.Logger

	// flow serializes sign-up, sign-in, sign-out, reset and profile writes.
	flow sync.Mutex

	mu           sync.Mutex
	snap         Snapshot
	bootstrapped bool
	// booting is closed when the running bootstrap returns; nil when none runs.
	booting chan struct{}
	subs    map[int]func(Snapshot)
	nextSub int
}

func NewSession(db Database, creds credentials.Store, api client.Client, logger logging.Logger) *Session {
	logger = logger.With("component", "session")
	s := &Session{
		db:         db,
		creds:      creds,
		api:        api,
		reconciler: NewReconciler(db, logger),
		validate:   validation.New(),
		logger:     logger,
		subs:       map[int]func(Snapshot){},
	}
	if n, ok := api.(client.ExpiryNotifier); ok {
		n.OnSessionExpired(s.remoteSessionExpired)
	}
	return s
}

// Snapshot returns the current session view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Subscribe registers fn to receive every published snapshot. fn is called
// synchronously by the publishing goroutine and must not call back into
// state-changing Session methods. The returned func unsubscribes.
func (s *Session) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) publish(update func(*Snapshot)) {
	s.mu.Lock()
	update(&s.snap)
	snap := s.snap
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Session) publishError(msg string) {
	s.publish(func(sn *Snapshot) { sn.Error = msg })
}

// Bootstrap opens local storage, seeds the catalog and restores the user
// saved in the credential store. A call while another bootstrap runs, or
// after one succeeded, is a no-op.
func (s *Session) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	if s.booting != nil || s.bootstrapped {
		s.mu.Unlock()
		return nil
	}
	booting := make(chan struct{})
	s.booting = booting
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.booting = nil
		s.mu.Unlock()
		close(booting)
	}()

	s.publish(func(sn *Snapshot) {
		*sn = Snapshot{State: StateBootstrapping}
	})

	db, err := s.db.Open(ctx)
	if err == nil {
		err = SeedCatalog(ctx, db)
	}
	if err != nil {
		s.logger.Error(ctx, "bootstrap failed", "error", err)
		s.publish(func(sn *Snapshot) {
			*sn = Snapshot{State: StateError, Error: userMessage(err)}
		})
		return err
	}

	snap, err := s.restore(ctx, db)
	if err != nil {
		s.logger.Error(ctx, "restoring session failed", "error", err)
		s.publish(func(sn *Snapshot) {
			*sn = Snapshot{State: StateError, Error: userMessage(err)}
		})
		return err
	}

	s.publish(func(sn *Snapshot) { *sn = snap })

	s.mu.Lock()
	s.bootstrapped = true
	s.mu.Unlock()

	s.logger.Info(ctx, "session bootstrapped", "state", snap.State.String())
	return nil
}

// restore resolves session_user_id to a user. A missing or dangling id
// yields an anonymous snapshot.
func (s *Session) restore(ctx context.Context, db *sql.DB) (Snapshot, error) {
	anonymous := Snapshot{State: StateAnonymous}

	userID, err := s.creds.Get(ctx, credentials.KeySessionUserID)
	if err != nil {
		s.logger.Warn(ctx, "reading session user failed, starting anonymous", "error", err)
		return anonymous, nil
	}
	if userID == "" {
		return anonymous, nil
	}

	repos := repositories.New(db)
	user, err := repos.Users.GetByID(ctx, userID)
	if errors.Is(err, common.ErrNotFound) {
		s.logger.Info(ctx, "session user no longer exists", "user_id", userID)
		if err := s.creds.Delete(ctx, credentials.KeySessionUserID); err != nil {
			s.logger.Warn(ctx, "clearing dangling session user failed", "error", err)
		}
		return anonymous, nil
	}
	if err != nil {
		return Snapshot{}, err
	}

	return s.loadSnapshot(ctx, db, user, StateAuthenticatedLocal)
}

// loadSnapshot builds an authenticated snapshot for user, ensuring its
// profile exists.
func (s *Session) loadSnapshot(ctx context.Context, db *sql.DB, user *models.User, state State) (Snapshot, error) {
	repos := repositories.New(db)

	if err := repos.Profiles.Ensure(ctx, user.ID, ""); err != nil {
		return Snapshot{}, err
	}
	profile, err := repos.Profiles.Get(ctx, user.ID)
	if err != nil {
		return Snapshot{}, err
	}
	count, err := repos.Logs.CountForUser(ctx, user.ID)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		State:              state,
		User:               models.NewCurrentUser(user),
		Profile:            profile,
		HasLoggedFirstShow: count > 0,
	}, nil
}

// Refresh reloads the profile and recomputes HasLoggedFirstShow for the
// current user. The state does not change.
func (s *Session) Refresh(ctx context.Context) error {
	cur := s.Snapshot()
	if cur.User == nil {
		return nil
	}

	db, err := s.db.Open(ctx)
	if err != nil {
		s.publishError(userMessage(err))
		return err
	}
	repos := repositories.New(db)

	profile, err := repos.Profiles.Get(ctx, cur.User.ID)
	if err != nil {
		s.publishError(userMessage(err))
		return err
	}
	count, err := repos.Logs.CountForUser(ctx, cur.User.ID)
	if err != nil {
		s.publishError(userMessage(err))
		return err
	}

	s.publish(func(sn *Snapshot) {
		if sn.User == nil || sn.User.ID != cur.User.ID {
			return
		}
		sn.Profile = profile
		sn.HasLoggedFirstShow = count > 0
	})
	return nil
}

// ResetLocalData clears credentials and destroys the local database. The
// session returns to StateUninitialized and must be bootstrapped again.
func (s *Session) ResetLocalData(ctx context.Context) error {
	s.flow.Lock()
	defer s.flow.Unlock()

	if err := credentials.DeleteAll(ctx, s.creds, credentials.AllKeys...); err != nil {
		s.logger.Warn(ctx, "clearing credentials failed", "error", err)
	}

	if err := s.db.Reset(ctx); err != nil {
		s.logger.Error(ctx, "reset local data failed", "error", err)
		s.publishError(userMessage(err))
		return err
	}

	s.mu.Lock()
	s.bootstrapped = false
	s.mu.Unlock()

	s.publish(func(sn *Snapshot) { *sn = Snapshot{State: StateUninitialized} })
	s.logger.Info(ctx, "local data reset")
	return nil
}

// remoteSessionExpired signs out a remote user whose tokens were purged
// after a failed refresh. Local domain data is kept, so the user can sign in
// again on-device or online. flow is not taken: the hook may fire from a
// request made while another operation holds it.
func (s *Session) remoteSessionExpired(ctx context.Context) {
	cur := s.Snapshot()
	if cur.State != StateAuthenticatedRemote || cur.User == nil {
		return
	}

	if err := credentials.DeleteAll(ctx, s.creds, credentials.AllKeys...); err != nil {
		s.logger.Warn(ctx, "clearing credentials failed", "error", err)
	}

	s.publish(func(sn *Snapshot) {
		if sn.User == nil || sn.User.ID != cur.User.ID {
			return
		}
		*sn = Snapshot{State: StateAnonymous, Error: userMessage(common.ErrRefreshTokenExpired)}
	})
	s.logger.Info(ctx, "remote session expired, signed out", "user_id", cur.User.ID)
}

// ensureBootstrapped runs Bootstrap when it has not succeeded yet. A
// bootstrap already in flight is waited for, so its restored snapshot is
// published before the caller changes the session.
func (s *Session) ensureBootstrapped(ctx context.Context) (*sql.DB, error) {
	for {
		s.mu.Lock()
		done, booting := s.bootstrapped, s.booting
		s.mu.Unlock()

		if done {
			break
		}
		if booting != nil {
			select {
			case <-booting:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if err := s.Bootstrap(ctx); err != nil {
			return nil, err
		}
	}

	db, err := s.db.Open(ctx)
	if err != nil {
		s.publishError(userMessage(err))
		return nil, err
	}
	return db, nil
}

// currentUser returns the signed-in user or an error.
func (s *Session) currentUser() (*models.CurrentUser, error) {
	snap := s.Snapshot()
	if snap.User == nil {
		return nil, fmt.Errorf("no signed-in user: %w", common.ErrUnauthorized)
	}
	return snap.User, nil
}

// userMessage turns an error into the text shown to the user.
func userMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, common.ErrValidation):
		return validation.Message(err)
	case errors.Is(err, common.ErrDuplicate):
		return "That email or username is already in use."
	case errors.Is(err, common.ErrInvalidCredentials):
		return "Incorrect email or password."
	case errors.Is(err, common.ErrStorage):
		return "Local storage is unavailable. Check the app setup and try again."
	case errors.Is(err, common.ErrRefreshTokenExpired), errors.Is(err, common.ErrTokenExpired):
		return "Your session has expired. Please sign in again."
	case errors.Is(err, common.ErrUnauthorized):
		return "Please sign in first."
	default:
		return "Something went wrong. Please try again."
	}
}
