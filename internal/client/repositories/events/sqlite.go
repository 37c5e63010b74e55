package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gigbook/internal/client/models"
	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/dmitrijs2005/gigbook/internal/dbx"
)

const selectEvent = `SELECT ` + Columns + ` FROM events e ` + Joins

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateOrGet returns the event for (artistID, venueID, date), creating it
// if needed. The date is matched exactly at millisecond precision. A tour
// name fills in a previously empty one but never overwrites it.
func (r *SQLiteRepository) CreateOrGet(ctx context.Context, artistID, venueID int64, date time.Time, tourName string) (*models.Event, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("event date is empty: %w", common.ErrValidation)
	}
	tourName = strings.TrimSpace(tourName)
	at := dbx.ToMillis(date)

	var event *models.Event
	err := dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO events (artist_id, venue_id, event_date, tour_name, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, artistID, venueID, at, tourName, dbx.ToMillis(time.Now()))
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}

		if tourName != "" {
			_, err = tx.ExecContext(ctx, `
				UPDATE events SET tour_name = ?
				WHERE artist_id = ? AND venue_id = ? AND event_date = ? AND tour_name = ''
			`, tourName, artistID, venueID, at)
			if err != nil {
				return fmt.Errorf("failed to update tour name: %w", err)
			}
		}

		event, err = scanOne(tx.QueryRowContext(ctx,
			selectEvent+` WHERE e.artist_id = ? AND e.venue_id = ? AND e.event_date = ?`,
			artistID, venueID, at))
		return err
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	return scanOne(r.db.QueryRowContext(ctx, selectEvent+` WHERE e.id = ?`, id))
}

// GetEventsByArtist lists the artist's events, newest first.
func (r *SQLiteRepository) GetEventsByArtist(ctx context.Context, artistID int64) ([]models.Event, error) {
	return r.list(ctx, selectEvent+` WHERE e.artist_id = ? ORDER BY e.event_date DESC, e.id DESC`, artistID)
}

// GetEventsByVenue lists the venue's events, newest first.
func (r *SQLiteRepository) GetEventsByVenue(ctx context.Context, venueID int64) ([]models.Event, error) {
	return r.list(ctx, selectEvent+` WHERE e.venue_id = ? ORDER BY e.event_date DESC, e.id DESC`, venueID)
}

// ListBetween lists events dated in [from, to), oldest first.
func (r *SQLiteRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.Event, error) {
	return r.list(ctx,
		selectEvent+` WHERE e.event_date >= ? AND e.event_date < ? ORDER BY e.event_date, e.id`,
		dbx.ToMillis(from), dbx.ToMillis(to))
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var result []models.Event
	for rows.Next() {
		var s Scanner
		if err := rows.Scan(s.Dest()...); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		result = append(result, s.Event())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event rows: %w", err)
	}
	return result, nil
}

func scanOne(row *sql.Row) (*models.Event, error) {
	var s Scanner
	err := row.Scan(s.Dest()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	ev := s.Event()
	return &ev, nil
}
