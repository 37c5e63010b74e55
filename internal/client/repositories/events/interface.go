// Package events stores shows: unique on (artist, venue, date). Every read
// returns events joined with their artist and venue.
package events

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gigbook/internal/client/models"
)

type Repository interface {
	CreateOrGet(ctx context.Context, artistID, venueID int64, date time.Time, tourName string) (*models.Event, error)
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	GetEventsByArtist(ctx context.Context, artistID int64) ([]models.Event, error)
	GetEventsByVenue(ctx context.Context, venueID int64) ([]models.Event, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Event, error)
}
