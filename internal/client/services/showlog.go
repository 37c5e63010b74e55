package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gigbook/internal/api"
	"github.com/dmitrijs2005/gigbook/internal/client/client"
	"github.com/dmitrijs2005/gigbook/internal/client/models"
	"github.com/dmitrijs2005/gigbook/internal/client/repositories"
	"github.com/dmitrijs2005/gigbook/internal/client/repositories/artists"
	"github.com/dmitrijs2005/gigbook/internal/client/repositories/venues"
	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/dmitrijs2005/gigbook/internal/dbx"
	"github.com/dmitrijs2005/gigbook/internal/logging"
	"github.com/dmitrijs2005/gigbook/internal/validation"
)

// EventInput identifies a show by artist, venue and date. Missing catalog
// entries are created on the fly.
type EventInput struct {
	ArtistName string    `json:"artistName" validate:"required,max=200"`
	VenueName  string    `json:"venueName" validate:"required,max=200"`
	City       string    `json:"city" validate:"max=100"`
	Date       time.Time `json:"date" validate:"required"`
	TourName   string    `json:"tourName" validate:"max=200"`
}

func (in *EventInput) normalize() {
	in.ArtistName = strings.TrimSpace(in.ArtistName)
	in.VenueName = strings.TrimSpace(in.VenueName)
	in.City = strings.TrimSpace(in.City)
	in.TourName = strings.TrimSpace(in.TourName)
}

type ShowInput struct {
	EventInput
	Rating *float64 `json:"rating" validate:"omitempty,min=0,max=5"`
	Note   string   `json:"note" validate:"max=2000"`
	Seat   models.Seat
}

type TicketInput struct {
	EventInput
	Seat       models.Seat
	TicketType string `json:"ticketType" validate:"max=50"`
	PriceCents *int64 `json:"priceCents" validate:"omitempty,min=0"`
}

// ShowLog records attendance, tickets and interest markers in the local
// database. Logs of remote-authenticated users are mirrored to the API on a
// best-effort basis; a failed mirror is logged and dropped.
type ShowLog struct {
	db       Database
	api      client.Client
	validate *validation.Validator
	logger   logging.Logger
}

func NewShowLog(db Database, api client.Client, logger logging.Logger) *ShowLog {
	return &ShowLog{
		db:       db,
		api:      api,
		validate: validation.New(),
		logger:   logger.With("component", "showlog"),
	}
}

// LogShow saves the user's log for the show described by in. Logging the
// same show again updates the existing log.
func (l *ShowLog) LogShow(ctx context.Context, user *models.CurrentUser, in ShowInput) (*models.UserLog, error) {
	if user == nil {
		return nil, fmt.Errorf("no signed-in user: %w", common.ErrUnauthorized)
	}
	in.normalize()
	in.Note = strings.TrimSpace(in.Note)
	if err := l.validate.Struct(in); err != nil {
		return nil, err
	}

	db, err := l.db.Open(ctx)
	if err != nil {
		return nil, err
	}

	var saved *models.UserLog
	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repos := repositories.New(tx)

		ev, err := resolveEvent(ctx, repos, in.EventInput)
		if err != nil {
			return err
		}

		entry := &models.UserLog{
			UserID:  user.ID,
			EventID: ev.ID,
			Rating:  in.Rating,
			Note:    in.Note,
			Seat:    in.Seat,
		}
		if _, err := repos.Logs.CreateOrUpdateLog(ctx, entry); err != nil {
			return err
		}

		saved, err = repos.Logs.GetLog(ctx, user.ID, ev.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info(ctx, "show logged", "user_id", user.ID, "event_id", saved.EventID)

	if user.IsRemote() {
		l.mirror(ctx, saved)
	}
	return saved, nil
}

func (l *ShowLog) mirror(ctx context.Context, entry *models.UserLog) {
	if l.api == nil {
		return
	}

	req := api.LogRequest{
		ArtistName: entry.Event.Artist.Name,
		VenueName:  entry.Event.Venue.Name,
		City:       entry.Event.Venue.City,
		Date:       entry.Event.Date,
		TourName:   entry.Event.TourName,
		Rating:     entry.Rating,
		Note:       entry.Note,
	}
	if _, err := l.api.CreateLog(ctx, req); err != nil {
		l.logger.Warn(ctx, "mirroring log to server failed", "log_id", entry.ID, "error", err)
		return
	}
	l.logger.Debug(ctx, "log mirrored", "log_id", entry.ID)
}

// Logs returns the user's logs, most recent show first.
func (l *ShowLog) Logs(ctx context.Context, userID string) ([]models.UserLog, error) {
	db, err := l.db.Open(ctx)
	if err != nil {
		return nil, err
	}
	return repositories.New(db).Logs.ListLogsForUser(ctx, userID)
}

func (l *ShowLog) DeleteLog(ctx context.Context, userID string, logID int64) error {
	db, err := l.db.Open(ctx)
	if err != nil {
		return err
	}
	return repositories.New(db).Logs.Delete(ctx, userID, logID)
}

// AddTicket stores a ticket for the show described by in.
func (l *ShowLog) AddTicket(ctx context.Context, userID string, in TicketInput) (*models.UserTicket, error) {
	in.normalize()
	in.TicketType = strings.TrimSpace(in.TicketType)
	if err := l.validate.Struct(in); err != nil {
		return nil, err
	}

	db, err := l.db.Open(ctx)
	if err != nil {
		return nil, err
	}

	var ticket *models.UserTicket
	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repos := repositories.New(tx)

		ev, err := resolveEvent(ctx, repos, in.EventInput)
		if err != nil {
			return err
		}

		ticket = &models.UserTicket{
			UserID:     userID,
			EventID:    ev.ID,
			Seat:       in.Seat,
			TicketType: in.TicketType,
			PriceCents: in.PriceCents,
			Event:      *ev,
		}
		_, err = repos.Tickets.Create(ctx, ticket)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// TicketsForDay returns the user's tickets for shows on the calendar day
// containing day in loc, ordered by show time. A nil loc means time.Local.
func (l *ShowLog) TicketsForDay(ctx context.Context, userID string, day time.Time, loc *time.Location) ([]models.UserTicket, error) {
	start, end := dayBounds(day, loc)

	db, err := l.db.Open(ctx)
	if err != nil {
		return nil, err
	}
	return repositories.New(db).Tickets.GetTicketsForDate(ctx, userID, start, end)
}

func (l *ShowLog) Tickets(ctx context.Context, userID string) ([]models.UserTicket, error) {
	db, err := l.db.Open(ctx)
	if err != nil {
		return nil, err
	}
	return repositories.New(db).Tickets.ListForUser(ctx, userID)
}

func (l *ShowLog) DeleteTicket(ctx context.Context, userID string, ticketID int64) error {
	db, err := l.db.Open(ctx)
	if err != nil {
		return err
	}
	return repositories.New(db).Tickets.Delete(ctx, userID, ticketID)
}

// MarkInterested flags the show described by in for the user. Marking twice
// is a no-op.
func (l *ShowLog) MarkInterested(ctx context.Context, userID string, in EventInput) (*models.Event, error) {
	in.normalize()
	if err := l.validate.Struct(in); err != nil {
		return nil, err
	}

	db, err := l.db.Open(ctx)
	if err != nil {
		return nil, err
	}

	var ev *models.Event
	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repos := repositories.New(tx)

		var err error
		if ev, err = resolveEvent(ctx, repos, in); err != nil {
			return err
		}
		return repos.Interested.Mark(ctx, userID, ev.ID)
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func (l *ShowLog) UnmarkInterested(ctx context.Context, userID string, eventID int64) error {
	db, err := l.db.Open(ctx)
	if err != nil {
		return err
	}
	return repositories.New(db).Interested.Unmark(ctx, userID, eventID)
}

func (l *ShowLog) Interested(ctx context.Context, userID string) ([]models.UserInterested, error) {
	db, err := l.db.Open(ctx)
	if err != nil {
		return nil, err
	}
	return repositories.New(db).Interested.ListForUser(ctx, userID)
}

// SearchArtists returns catalog artists whose name starts with prefix.
func (l *ShowLog) SearchArtists(ctx context.Context, prefix string) ([]models.Artist, error) {
	db, err := l.db.Open(ctx)
	if err != nil {
		return nil, err
	}
	return repositories.New(db).Artists.Search(ctx, prefix, artists.DefaultSearchLimit)
}

// SearchVenues returns catalog venues whose name starts with prefix.
func (l *ShowLog) SearchVenues(ctx context.Context, prefix string) ([]models.Venue, error) {
	db, err := l.db.Open(ctx)
	if err != nil {
		return nil, err
	}
	return repositories.New(db).Venues.Search(ctx, prefix, venues.DefaultSearchLimit)
}

func resolveEvent(ctx context.Context, repos *repositories.Repositories, in EventInput) (*models.Event, error) {
	artist, err := repos.Artists.CreateOrGetByName(ctx, in.ArtistName)
	if err != nil {
		return nil, err
	}
	venue, err := repos.Venues.CreateOrGet(ctx, in.VenueName, in.City)
	if err != nil {
		return nil, err
	}
	return repos.Events.CreateOrGet(ctx, artist.ID, venue.ID, in.Date, in.TourName)
}

// dayBounds returns [midnight, next midnight) of the day containing t in loc.
func dayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
