// Package interested stores "notify me" markers, unique per (user, event).
package interested

import (
	"context"

	"github.com/dmitrijs2005/gigbook/internal/client/models"
)

type Repository interface {
	Mark(ctx context.Context, userID string, eventID int64) error
	Unmark(ctx context.Context, userID string, eventID int64) error
	IsInterested(ctx context.Context, userID string, eventID int64) (bool, error)
	ListForUser(ctx context.Context, userID string) ([]models.UserInterested, error)
	Reassign(ctx context.Context, fromUserID, toUserID string) error
}
