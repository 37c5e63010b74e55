// Package logs stores show logs mirrored by clients.
package logs

import (
	"context"

	"github.com/dmitrijs2005/gigbook/internal/server/models"
)

type Repository interface {
	// Upsert stores log keyed by (user, artist, venue, city, date). Names are
	// compared with common.FoldKey and the date to the millisecond, the same
	// identity clients give an event. A second call for the same key updates
	// rating, note and tour in place and keeps the id.
	Upsert(ctx context.Context, log *models.Log) (*models.Log, error)
	ListByUser(ctx context.Context, userID string) ([]models.Log, error)
}
