package profiles

import (
	"context"

	"github.com/dmitrijs2005/gigbook/internal/client/models"
)

// Repository manages the one-to-one profile of a user. Profiles are created
// lazily with Ensure and never duplicated.
type Repository interface {
	Ensure(ctx context.Context, userID, username string) error
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Update(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.Profile, error)
	CompleteOnboarding(ctx context.Context, userID string) error
	UsernameTaken(ctx context.Context, username, exceptUserID string) (bool, error)
}
