// Package venues stores the venue catalog, deduplicated by case-insensitive
// (name, city).
package venues

import (
	"context"

	"github.com/dmitrijs2005/gigbook/internal/client/models"
)

type Repository interface {
	CreateOrGet(ctx context.Context, name, city string) (*models.Venue, error)
	GetByID(ctx context.Context, id int64) (*models.Venue, error)
	Search(ctx context.Context, prefix string, limit int) ([]models.Venue, error)
}
