package logs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gigbook/internal/client/models"
	"github.com/dmitrijs2005/gigbook/internal/client/repositories/events"
	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/dmitrijs2005/gigbook/internal/dbx"
)

const selectLog = `
	SELECT l.id, l.user_id, l.event_id, l.rating, l.note,
	       l.seat_section, l.seat_row, l.seat_number, l.created_at, l.updated_at,
	       ` + events.Columns + `
	FROM user_logs l
	JOIN events e ON e.id = l.event_id
	` + events.Joins

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateOrUpdateLog inserts the log or, when the user already logged the
// event, updates it in place. It returns the id of the single row for
// (UserID, EventID).
func (r *SQLiteRepository) CreateOrUpdateLog(ctx context.Context, l *models.UserLog) (int64, error) {
	now := dbx.ToMillis(time.Now())

	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO user_logs (user_id, event_id, rating, note, seat_section, seat_row, seat_number, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, event_id) DO UPDATE SET
			rating       = excluded.rating,
			note         = excluded.note,
			seat_section = excluded.seat_section,
			seat_row     = excluded.seat_row,
			seat_number  = excluded.seat_number,
			updated_at   = excluded.updated_at
		RETURNING id
	`, l.UserID, l.EventID, l.Rating, l.Note, l.Seat.Section, l.Seat.Row, l.Seat.Number, now, now).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save log: %w", err)
	}
	l.ID = id
	return id, nil
}

func (r *SQLiteRepository) GetLog(ctx context.Context, userID string, eventID int64) (*models.UserLog, error) {
	l, err := scan(r.db.QueryRowContext(ctx, selectLog+` WHERE l.user_id = ? AND l.event_id = ?`, userID, eventID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get log: %w", err)
	}
	return l, nil
}

// ListLogsForUser returns the user's logs, most recent show first.
func (r *SQLiteRepository) ListLogsForUser(ctx context.Context, userID string) ([]models.UserLog, error) {
	rows, err := r.db.QueryContext(ctx,
		selectLog+` WHERE l.user_id = ? ORDER BY e.event_date DESC, l.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	defer rows.Close()

	var result []models.UserLog
	for rows.Next() {
		l, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log row: %w", err)
		}
		result = append(result, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate log rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) CountForUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_logs WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count logs: %w", err)
	}
	return n, nil
}

// Delete removes one of the user's logs. A log owned by someone else is
// reported as common.ErrNotFound.
func (r *SQLiteRepository) Delete(ctx context.Context, userID string, logID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_logs WHERE id = ? AND user_id = ?`, logID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete log: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// Reassign moves every log of fromUserID to toUserID. Where both users
// logged the same event the log already owned by toUserID is kept.
func (r *SQLiteRepository) Reassign(ctx context.Context, fromUserID, toUserID string) error {
	return dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE OR IGNORE user_logs SET user_id = ? WHERE user_id = ?`, toUserID, fromUserID); err != nil {
			return fmt.Errorf("failed to reassign logs: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_logs WHERE user_id = ?`, fromUserID); err != nil {
			return fmt.Errorf("failed to drop conflicting logs: %w", err)
		}
		return nil
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*models.UserLog, error) {
	var (
		l                    models.UserLog
		rating               sql.NullFloat64
		createdAt, updatedAt int64
		ev                   events.Scanner
	)
	dest := append([]any{
		&l.ID, &l.UserID, &l.EventID, &rating, &l.Note,
		&l.Seat.Section, &l.Seat.Row, &l.Seat.Number, &createdAt, &updatedAt,
	}, ev.Dest()...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if rating.Valid {
		l.Rating = &rating.Float64
	}
	l.CreatedAt = dbx.FromMillis(createdAt)
	l.UpdatedAt = dbx.FromMillis(updatedAt)
	l.Event = ev.Event()
	return &l, nil
}
