// Package tickets stores the tickets a user holds. Unlike logs, several
// tickets per (user, event) are allowed.
package tickets

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gigbook/internal/client/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.UserTicket) (int64, error)
	ListForUser(ctx context.Context, userID string) ([]models.UserTicket, error)
	GetTicketsForDate(ctx context.Context, userID string, start, end time.Time) ([]models.UserTicket, error)
	Delete(ctx context.Context, userID string, ticketID int64) error
	Reassign(ctx context.Context, fromUserID, toUserID string) error
}
