package events

import (
	"github.com/dmitrijs2005/gigbook/internal/client/models"
	"github.com/dmitrijs2005/gigbook/internal/dbx"
)

// Columns selects an event with its artist and venue. The event table must
// be aliased e and the query must include Joins.
const Columns = `e.id, e.artist_id, e.venue_id, e.event_date, e.tour_name,
	a.id, a.name, a.created_at, v.id, v.name, v.city, v.created_at`

// Joins attaches the artist (a) and venue (v) of event e.
const Joins = `JOIN artists a ON a.id = e.artist_id JOIN venues v ON v.id = e.venue_id`

// Scanner receives the values selected by Columns.
type Scanner struct {
	ev                models.Event
	date              int64
	artistAt, venueAt int64
}

// Dest returns the scan destinations in Columns order.
func (s *Scanner) Dest() []any {
	return []any{
		&s.ev.ID, &s.ev.ArtistID, &s.ev.VenueID, &s.date, &s.ev.TourName,
		&s.ev.Artist.ID, &s.ev.Artist.Name, &s.artistAt,
		&s.ev.Venue.ID, &s.ev.Venue.Name, &s.ev.Venue.City, &s.venueAt,
	}
}

// Event returns the scanned event.
func (s *Scanner) Event() models.Event {
	ev := s.ev
	ev.Date = dbx.FromMillis(s.date)
	ev.Artist.CreatedAt = dbx.FromMillis(s.artistAt)
	ev.Venue.CreatedAt = dbx.FromMillis(s.venueAt)
	return ev
}
