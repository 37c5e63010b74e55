// Package logs stores attendance logs. A user has at most one log per
// event; saving again updates it in place.
package logs

import (
	"context"

	"github.com/dmitrijs2005/gigbook/internal/client/models"
)

type Repository interface {
	CreateOrUpdateLog(ctx context.Context, l *models.UserLog) (int64, error)
	GetLog(ctx context.Context, userID string, eventID int64) (*models.UserLog, error)
	ListLogsForUser(ctx context.Context, userID string) ([]models.UserLog, error)
	CountForUser(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, userID string, logID int64) error
	Reassign(ctx context.Context, fromUserID, toUserID string) error
}
