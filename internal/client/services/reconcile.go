package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gigbook/internal/client/models"
	"github.com/dmitrijs2005/gigbook/internal/client/repositories"
	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/dmitrijs2005/gigbook/internal/cryptox"
	"github.com/dmitrijs2005/gigbook/internal/dbx"
	"github.com/dmitrijs2005/gigbook/internal/logging"
)

// Reconciler binds server-issued identities onto local user rows.
type Reconciler struct {
	db     Database
	logger logging.Logger
}

func NewReconciler(db Database, logger logging.Logger) *Reconciler {
	return &Reconciler{db: db, logger: logger.With("component", "reconcile")}
}

// UpsertUserFromRemote returns the local row for the remote identity
// (serverID, email), in one transaction:
//
//  1. A row already bound to serverID (or stored under it) is kept and its
//     email synced. A different row holding that email is merged into it
//     and deleted; on (user, event) clashes the kept row's data wins.
//  2. Otherwise a row with the same normalized email is reused. Its id stays
//     authoritative; serverID is recorded on it and its profile preserved.
//  3. Otherwise a row is created under serverID with placeholder password
//     material and an empty profile.
func (r *Reconciler) UpsertUserFromRemote(ctx context.Context, serverID, email string) (*models.User, error) {
	if serverID == "" {
		return nil, fmt.Errorf("remote user without id: %w", common.ErrValidation)
	}
	email = common.NormalizeEmail(email)

	db, err := r.db.Open(ctx)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repos := repositories.New(tx)

		kept, err := findBound(ctx, repos, serverID)
		if err != nil {
			return err
		}

		switch {
		case kept != nil:
			err = r.syncBound(ctx, repos, kept, serverID, email)
		default:
			kept, err = r.bindByEmail(ctx, repos, serverID, email)
		}
		if err != nil {
			return err
		}

		if err := repos.Profiles.Ensure(ctx, kept.ID, ""); err != nil {
			return err
		}
		user, err = repos.Users.GetByID(ctx, kept.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("reconcile remote user: %w", err)
	}
	return user, nil
}

// findBound returns the row bound to serverID, or nil.
func findBound(ctx context.Context, repos *repositories.Repositories, serverID string) (*models.User, error) {
	u, err := repos.Users.GetByServerID(ctx, serverID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	u, err = repos.Users.GetByID(ctx, serverID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

func (r *Reconciler) syncBound(ctx context.Context, repos *repositories.Repositories, kept *models.User, serverID, email string) error {
	if kept.Email != email {
		other, err := repos.Users.GetByEmail(ctx, email)
		switch {
		case err == nil && other.ID != kept.ID:
			r.logger.Info(ctx, "merging local user into remote identity", "from", other.ID, "into", kept.ID)
			if err := mergeInto(ctx, repos, other.ID, kept.ID); err != nil {
				return err
			}
		case err != nil && !errors.Is(err, common.ErrNotFound):
			return err
		}

		if err := repos.Users.UpdateEmail(ctx, kept.ID, email); err != nil {
			return err
		}
	}

	if kept.ServerID == "" {
		return repos.Users.BindServerID(ctx, kept.ID, serverID)
	}
	return nil
}

func (r *Reconciler) bindByEmail(ctx context.Context, repos *repositories.Repositories, serverID, email string) (*models.User, error) {
	existing, err := repos.Users.GetByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		u := &models.User{
			ID:       serverID,
			Email:    email,
			ServerID: serverID,
			Password: cryptox.Placeholder(),
		}
		if err := repos.Users.Create(ctx, u); err != nil {
			return nil, err
		}
		return u, nil
	}
	if err != nil {
		return nil, err
	}

	if existing.ServerID != "" && existing.ServerID != serverID {
		r.logger.Warn(ctx, "rebinding local user to a new server id", "user_id", existing.ID)
	}
	if err := repos.Users.BindServerID(ctx, existing.ID, serverID); err != nil {
		return nil, err
	}
	return existing, nil
}

// mergeInto moves attendance data from one user to another and deletes the
// source user.
func mergeInto(ctx context.Context, repos *repositories.Repositories, fromID, toID string) error {
	if err := repos.Logs.Reassign(ctx, fromID, toID); err != nil {
		return err
	}
	if err := repos.Tickets.Reassign(ctx, fromID, toID); err != nil {
		return err
	}
	if err := repos.Interested.Reassign(ctx, fromID, toID); err != nil {
		return err
	}
	return repos.Users.Delete(ctx, fromID)
}
