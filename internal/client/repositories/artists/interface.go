// Package artists stores the artist catalog, deduplicated by
// case-insensitive name.
package artists

import (
	"context"

	"github.com/dmitrijs2005/gigbook/internal/client/models"
)

type Repository interface {
	CreateOrGetByName(ctx context.Context, name string) (*models.Artist, error)
	GetByID(ctx context.Context, id int64) (*models.Artist, error)
	Search(ctx context.Context, prefix string, limit int) ([]models.Artist, error)
}
