// Package users persists identity rows. Emails are normalized on every
// write and lookup so exactly one row exists per normalized email.
package users

import (
	"context"

	"github.com/dmitrijs2005/gigbook/internal/client/models"
)

type Repository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByServerID(ctx context.Context, serverID string) (*models.User, error)
	UpdateEmail(ctx context.Context, id, email string) error
	BindServerID(ctx context.Context, id, serverID string) error
	Delete(ctx context.Context, id string) error
}
