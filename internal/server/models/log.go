package models

import "time"

// Log is a show log mirrored from a client.
type Log struct {
	ID         string
	UserID     string
	ArtistName string
	VenueName  string
	City       string
	Date       time.Time
	TourName   string
	Rating     *float64
	Note       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
