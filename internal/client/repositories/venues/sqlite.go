package venues

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

const DefaultSearchLimit = 20

const selectVenue = `SELECT id, name, city, created_at FROM venues`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateOrGet returns the venue matching (name, city) under Unicode case
// folding, creating it first if needed. An empty city is a valid key.
func (r *SQLiteRepository) CreateOrGet(ctx context.Context, name, city string) (*models.Venue, error) {
	name, city = strings.TrimSpace(name), strings.TrimSpace(city)
	if name == "" {
		return nil, fmt.Errorf("venue name is empty: %w", common.ErrValidation)
	}

	nameKey, cityKey := common.FoldKey(name), common.FoldKey(city)

	var venue *models.Venue
	err := dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO venues (name, name_key, city, city_key, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, name, nameKey, city, cityKey, dbx.ToMillis(time.Now()))
		if err != nil {
			return fmt.Errorf("failed to insert venue: %w", err)
		}
		venue, err = scanOne(tx.QueryRowContext(ctx,
			selectVenue+` WHERE name_key = ? AND city_key = ?`, nameKey, cityKey))
		return err
	})
	if err != nil {
		return nil, err
	}
	return venue, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Venue, error) {
	return scanOne(r.db.QueryRowContext(ctx, selectVenue+` WHERE id = ?`, id))
}

// Search lists venues whose name starts with prefix, ordered by name then city.
func (r *SQLiteRepository) Search(ctx context.Context, prefix string, limit int) ([]models.Venue, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	rows, err := r.db.QueryContext(ctx,
		selectVenue+` WHERE name_key LIKE ? ESCAPE '\' ORDER BY name_key, city_key LIMIT ?`,
		dbx.LikePrefix(common.FoldKey(prefix)), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search venues: %w", err)
	}
	defer rows.Close()

	var result []models.Venue
	for rows.Next() {
		var v models.Venue
		var createdAt int64
		if err := rows.Scan(&v.ID, &v.Name, &v.City, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan venue row: %w", err)
		}
		v.CreatedAt = dbx.FromMillis(createdAt)
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate venue rows: %w", err)
	}
	return result, nil
}

func scanOne(row *sql.Row) (*models.Venue, error) {
	var v models.Venue
	var createdAt int64
	err := row.Scan(&v.ID, &v.Name, &v.City, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}
	v.CreatedAt = dbx.FromMillis(createdAt)
	return &v, nil
}
