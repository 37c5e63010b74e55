package models

import "time"

// Seat is free-form seat metadata shared by logs and tickets.
type Seat struct {
	Section string
	Row     string
	Number  string
}

// UserLog records that a user attended an event. Unique per (user, event).
type UserLog struct {
	ID      int64
	UserID  string
	EventID int64
	// Rating is nil when the user did not rate the show.
	Rating    *float64
	Note      string
	Seat      Seat
	CreatedAt time.Time
	UpdatedAt time.Time

	Event Event
}

// UserTicket is a ticket the user holds for an event; several per event are allowed.
type UserTicket struct {
	ID         int64
	UserID     string
	EventID    int64
	Seat       Seat
	TicketType string
	// PriceCents is nil when unknown.
	PriceCents *int64
	CreatedAt  time.Time

	Event Event
}

// UserInterested is a "notify me" marker, unique per (user, event).
type UserInterested struct {
	ID        int64
	UserID    string
	EventID   int64
	CreatedAt time.Time

	Event Event
}
