package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gigbook/internal/client/credentials"
	"github.com/dmitrijs2005/gigbook/internal/client/models"
	"github.com/dmitrijs2005/gigbook/internal/client/repositories"
	"github.com/dmitrijs2005/gigbook/internal/common"
)

type profileInput struct {
	DisplayName *string `json:"displayName" validate:"omitempty,max=60"`
	Username    *string `json:"username" validate:"omitempty,min=3,max=30,alphanumunicode"`
	Bio         *string `json:"bio" validate:"omitempty,max=280"`
	AvatarURL   *string `json:"avatarUrl" validate:"omitempty,max=2048"`
	City        *string `json:"city" validate:"omitempty,max=100"`
}

// UpdateProfile applies upd to the signed-in user's profile and publishes
// the result. A username held by another user fails with
// common.ErrDuplicate.
func (s *Session) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) error {
	s.flow.Lock()
	defer s.flow.Unlock()

	user, err := s.currentUser()
	if err != nil {
		return s.fail(ctx, "update profile", err)
	}

	if upd.Username != nil {
		trimmed := strings.TrimSpace(*upd.Username)
		upd.Username = &trimmed
	}
	in := profileInput{
		DisplayName: upd.DisplayName,
		Username:    upd.Username,
		Bio:         upd.Bio,
		AvatarURL:   upd.AvatarURL,
		City:        upd.City,
	}
	if err := s.validate.Struct(in); err != nil {
		return s.fail(ctx, "update profile", err)
	}

	db, err := s.db.Open(ctx)
	if err != nil {
		return s.fail(ctx, "update profile", err)
	}
	repos := repositories.New(db)

	if upd.Username != nil && *upd.Username != "" {
		taken, err := repos.Profiles.UsernameTaken(ctx, *upd.Username, user.ID)
		if err != nil {
			return s.fail(ctx, "update profile", err)
		}
		if taken {
			return s.fail(ctx, "update profile", fmt.Errorf("username %s: %w", *upd.Username, common.ErrDuplicate))
		}
	}

	profile, err := repos.Profiles.Update(ctx, user.ID, upd)
	if err != nil {
		return s.fail(ctx, "update profile", err)
	}

	s.publishProfile(user.ID, profile)
	return nil
}

// CompleteOnboarding marks onboarding as done for the signed-in user.
func (s *Session) CompleteOnboarding(ctx context.Context) error {
	s.flow.Lock()
	defer s.flow.Unlock()

	user, err := s.currentUser()
	if err != nil {
		return s.fail(ctx, "complete onboarding", err)
	}

	db, err := s.db.Open(ctx)
	if err != nil {
		return s.fail(ctx, "complete onboarding", err)
	}
	repos := repositories.New(db)

	if err := repos.Profiles.CompleteOnboarding(ctx, user.ID); err != nil {
		return s.fail(ctx, "complete onboarding", err)
	}
	profile, err := repos.Profiles.Get(ctx, user.ID)
	if err != nil {
		return s.fail(ctx, "complete onboarding", err)
	}

	s.publishProfile(user.ID, profile)
	return nil
}

// DeleteAccount removes the signed-in user's local row together with its
// profile and attendance data, then signs out. The remote account is not
// touched.
func (s *Session) DeleteAccount(ctx context.Context) error {
	s.flow.Lock()
	defer s.flow.Unlock()

	user, err := s.currentUser()
	if err != nil {
		return s.fail(ctx, "delete account", err)
	}

	db, err := s.db.Open(ctx)
	if err != nil {
		return s.fail(ctx, "delete account", err)
	}
	if err := repositories.New(db).Users.Delete(ctx, user.ID); err != nil {
		return s.fail(ctx, "delete account", err)
	}

	if err := credentials.DeleteAll(ctx, s.creds, credentials.AllKeys...); err != nil {
		s.logger.Warn(ctx, "clearing credentials failed", "error", err)
	}

	s.publish(func(sn *Snapshot) { *sn = Snapshot{State: StateAnonymous} })
	s.logger.Info(ctx, "account deleted", "user_id", user.ID)
	return nil
}

func (s *Session) publishProfile(userID string, p *models.Profile) {
	s.publish(func(sn *Snapshot) {
		if sn.User == nil || sn.User.ID != userID {
			return
		}
		sn.Profile = p
		sn.Error = ""
	})
}
