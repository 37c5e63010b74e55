package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gigbook/internal/client/repositories"
	"github.com/dmitrijs2005/gigbook/internal/dbx"
)

type seedVenue struct {
	name, city string
}

var (
	seedArtists = []string{
		"Taylor Swift", "Beyoncé", "Drake", "Coldplay", "Billie Eilish",
		"Kendrick Lamar", "Arctic Monkeys", "Olivia Rodrigo", "The Weeknd",
		"Fred again..", "boygenius", "Bad Bunny",
	}
	seedVenues = []seedVenue{
		{"Madison Square Garden", "New York"},
		{"Red Rocks Amphitheatre", "Morrison"},
		{"Hollywood Bowl", "Los Angeles"},
		{"The O2", "London"},
		{"Wembley Stadium", "London"},
		{"Royal Albert Hall", "London"},
		{"Paradiso", "Amsterdam"},
		{"Olympia", "Paris"},
		{"Sydney Opera House", "Sydney"},
		{"Budokan", "Tokyo"},
	}
)

// SeedCatalog inserts the starter artists and venues. It runs in one
// transaction and is safe to repeat: existing rows are left as they are.
func SeedCatalog(ctx context.Context, db *sql.DB) error {
	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repos := repositories.New(tx)
		for _, name := range seedArtists {
			if _, err := repos.Artists.CreateOrGetByName(ctx, name); err != nil {
				return err
			}
		}
		for _, v := range seedVenues {
			if _, err := repos.Venues.CreateOrGet(ctx, v.name, v.city); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	return nil
}
