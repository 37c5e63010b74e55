package artists

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

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateOrGetByName returns the artist whose name matches under Unicode case
// folding, creating it first if needed. The first spelling written wins.
func (r *SQLiteRepository) CreateOrGetByName(ctx context.Context, name string) (*models.Artist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("artist name is empty: %w", common.ErrValidation)
	}

	key := common.FoldKey(name)

	var artist *models.Artist
	err := dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO artists (name, name_key, created_at) VALUES (?, ?, ?)`,
			name, key, dbx.ToMillis(time.Now()))
		if err != nil {
			return fmt.Errorf("failed to insert artist: %w", err)
		}
		artist, err = scanOne(tx.QueryRowContext(ctx,
			`SELECT id, name, created_at FROM artists WHERE name_key = ?`, key))
		return err
	})
	if err != nil {
		return nil, err
	}
	return artist, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Artist, error) {
	return scanOne(r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM artists WHERE id = ?`, id))
}

// Search lists artists whose name starts with prefix, alphabetically.
func (r *SQLiteRepository) Search(ctx context.Context, prefix string, limit int) ([]models.Artist, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, created_at FROM artists
		WHERE name_key LIKE ? ESCAPE '\'
		ORDER BY name_key LIMIT ?
	`, dbx.LikePrefix(common.FoldKey(prefix)), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search artists: %w", err)
	}
	defer rows.Close()

	var result []models.Artist
	for rows.Next() {
		var a models.Artist
		var createdAt int64
		if err := rows.Scan(&a.ID, &a.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan artist row: %w", err)
		}
		a.CreatedAt = dbx.FromMillis(createdAt)
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate artist rows: %w", err)
	}
	return result, nil
}

func scanOne(row *sql.Row) (*models.Artist, error) {
	var a models.Artist
	var createdAt int64
	err := row.Scan(&a.ID, &a.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artist: %w", err)
	}
	a.CreatedAt = dbx.FromMillis(createdAt)
	return &a, nil
}
