// Package users declares the server-side user repository with PostgreSQL
// and in-memory implementations.
package users

import (
	"context"

	"github.com/dmitrijs2005/gigbook/internal/server/models"
)

type Repository interface {
	// Create assigns an id and stores user. Emails and usernames are
	// unique; a clash returns common.ErrDuplicate.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
