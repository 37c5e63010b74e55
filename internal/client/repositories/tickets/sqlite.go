package tickets

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gigbook/internal/client/models"
	"github.com/dmitrijs2005/gigbook/internal/client/repositories/events"
	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/dmitrijs2005/gigbook/internal/dbx"
)

const selectTicket = `
	SELECT t.id, t.user_id, t.event_id, t.seat_section, t.seat_row, t.seat_number,
	       t.ticket_type, t.price_cents, t.created_at,
	       ` + events.Columns + `
	FROM user_tickets t
	JOIN events e ON e.id = t.event_id
	` + events.Joins

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, t *models.UserTicket) (int64, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO user_tickets (user_id, event_id, seat_section, seat_row, seat_number, ticket_type, price_cents, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, t.UserID, t.EventID, t.Seat.Section, t.Seat.Row, t.Seat.Number, t.TicketType, t.PriceCents, dbx.ToMillis(t.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("failed to create ticket: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read ticket id: %w", err)
	}
	t.ID = id
	return id, nil
}

// ListForUser returns all of the user's tickets ordered by event date.
func (r *SQLiteRepository) ListForUser(ctx context.Context, userID string) ([]models.UserTicket, error) {
	return r.list(ctx, selectTicket+` WHERE t.user_id = ? ORDER BY e.event_date, t.id`, userID)
}

// GetTicketsForDate returns the user's tickets for events dated in
// [start, end), ordered ascending by event date.
func (r *SQLiteRepository) GetTicketsForDate(ctx context.Context, userID string, start, end time.Time) ([]models.UserTicket, error) {
	return r.list(ctx,
		selectTicket+` WHERE t.user_id = ? AND e.event_date >= ? AND e.event_date < ? ORDER BY e.event_date, t.id`,
		userID, dbx.ToMillis(start), dbx.ToMillis(end))
}

// Delete removes one of the user's tickets. A ticket owned by someone else
// is reported as common.ErrNotFound.
func (r *SQLiteRepository) Delete(ctx context.Context, userID string, ticketID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_tickets WHERE id = ? AND user_id = ?`, ticketID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// Reassign moves every ticket of fromUserID to toUserID.
func (r *SQLiteRepository) Reassign(ctx context.Context, fromUserID, toUserID string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE user_tickets SET user_id = ? WHERE user_id = ?`, toUserID, fromUserID); err != nil {
		return fmt.Errorf("failed to reassign tickets: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.UserTicket, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var result []models.UserTicket
	for rows.Next() {
		var (
			t         models.UserTicket
			price     sql.NullInt64
			createdAt int64
			ev        events.Scanner
		)
		dest := append([]any{
			&t.ID, &t.UserID, &t.EventID, &t.Seat.Section, &t.Seat.Row, &t.Seat.Number,
			&t.TicketType, &price, &createdAt,
		}, ev.Dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan ticket row: %w", err)
		}
		if price.Valid {
			t.PriceCents = &price.Int64
		}
		t.CreatedAt = dbx.FromMillis(createdAt)
		t.Event = ev.Event()
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ticket rows: %w", err)
	}
	return result, nil
}
