package interested

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gigbook/internal/client/models"
	"github.com/dmitrijs2005/gigbook/internal/client/repositories/events"
	"github.com/dmitrijs2005/gigbook/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Mark is idempotent.
func (r *SQLiteRepository) Mark(ctx context.Context, userID string, eventID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_interested (user_id, event_id, created_at) VALUES (?, ?, ?)`,
		userID, eventID, dbx.ToMillis(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to mark interest: %w", err)
	}
	return nil
}

// Unmark is a no-op when no marker exists.
func (r *SQLiteRepository) Unmark(ctx context.Context, userID string, eventID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_interested WHERE user_id = ? AND event_id = ?`, userID, eventID)
	if err != nil {
		return fmt.Errorf("failed to unmark interest: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) IsInterested(ctx context.Context, userID string, eventID int64) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_interested WHERE user_id = ? AND event_id = ?)`,
		userID, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check interest: %w", err)
	}
	return exists == 1, nil
}

// ListForUser returns the user's markers, soonest event first.
func (r *SQLiteRepository) ListForUser(ctx context.Context, userID string) ([]models.UserInterested, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, i.user_id, i.event_id, i.created_at, `+events.Columns+`
		FROM user_interested i
		JOIN events e ON e.id = i.event_id
		`+events.Joins+`
		WHERE i.user_id = ?
		ORDER BY e.event_date, i.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interest: %w", err)
	}
	defer rows.Close()

	var result []models.UserInterested
	for rows.Next() {
		var (
			m         models.UserInterested
			createdAt int64
			ev        events.Scanner
		)
		dest := append([]any{&m.ID, &m.UserID, &m.EventID, &createdAt}, ev.Dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan interest row: %w", err)
		}
		m.CreatedAt = dbx.FromMillis(createdAt)
		m.Event = ev.Event()
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interest rows: %w", err)
	}
	return result, nil
}

// Reassign moves every marker of fromUserID to toUserID, dropping those
// toUserID already has.
func (r *SQLiteRepository) Reassign(ctx context.Context, fromUserID, toUserID string) error {
	return dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE OR IGNORE user_interested SET user_id = ? WHERE user_id = ?`, toUserID, fromUserID); err != nil {
			return fmt.Errorf("failed to reassign interest: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_interested WHERE user_id = ?`, fromUserID); err != nil {
			return fmt.Errorf("failed to drop conflicting interest: %w", err)
		}
		return nil
	})
}
