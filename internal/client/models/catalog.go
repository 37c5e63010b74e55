package models

import "time"

// Artist is deduplicated by case-insensitive name.
type Artist struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Venue is deduplicated by case-insensitive (name, city).
type Venue struct {
	ID        int64
	Name      string
	City      string
	CreatedAt time.Time
}

// Event is one show: unique on (artist, venue, date). Reads always return
// it joined with its artist and venue.
type Event struct {
	ID       int64
	ArtistID int64
	VenueID  int64
	Date     time.Time
	TourName string

	Artist Artist
	Venue  Venue
}
