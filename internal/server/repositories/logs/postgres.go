package logs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/dmitrijs2005/gigbook/internal/dbx"
	"github.com/dmitrijs2005/gigbook/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, log *models.Log) (*models.Log, error) {
	now := time.Now().UTC()
	l := *log

	query := `
		INSERT INTO show_logs (id, user_id, artist_name, artist_key, venue_name, venue_key,
		                       city, city_key, show_date, tour_name, rating, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		ON CONFLICT (user_id, artist_key, venue_key, city_key, show_date) DO UPDATE
		SET tour_name = EXCLUDED.tour_name,
		    rating = EXCLUDED.rating,
		    note = EXCLUDED.note,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, artist_name, venue_name, city, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		uuid.NewString(), l.UserID,
		l.ArtistName, common.FoldKey(l.ArtistName),
		l.VenueName, common.FoldKey(l.VenueName),
		l.City, common.FoldKey(l.City),
		l.Date.UTC(), l.TourName, l.Rating, l.Note, now,
	).Scan(&l.ID, &l.ArtistName, &l.VenueName, &l.City, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &l, nil
}

// ListByUser returns the user's logs, newest show first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.Log, error) {
	query := `
		SELECT id, user_id, artist_name, venue_name, city, show_date, tour_name,
		       rating, note, created_at, updated_at
		FROM show_logs
		WHERE user_id = $1
		ORDER BY show_date DESC, created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.Log, 0)
	for rows.Next() {
		var (
			l      models.Log
			rating sql.NullFloat64
		)
		err := rows.Scan(&l.ID, &l.UserID, &l.ArtistName, &l.VenueName, &l.City, &l.Date,
			&l.TourName, &rating, &l.Note, &l.CreatedAt, &l.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if rating.Valid {
			l.Rating = &rating.Float64
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
