package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/dmitrijs2005/gigbook/internal/dbx"
	"github.com/dmitrijs2005/gigbook/internal/server/models"
	"github.com/google/uuid"
)

const selectUser = `SELECT id, email, username, password_hash, created_at FROM users`

// PostgresRepository stores users in PostgreSQL over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	u := *user
	u.ID = uuid.NewString()
	u.Email = common.NormalizeEmail(u.Email)

	query := `
		INSERT INTO users (id, email, username, username_key, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		u.ID, u.Email, u.Username, usernameKey(u.Username), u.PasswordHash).Scan(&u.CreatedAt)
	if dbx.IsPgUniqueViolation(err) {
		return nil, common.ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &u, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE email = $1`, common.NormalizeEmail(email)))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE id = $1`, id))
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// usernameKey is NULL for users without a username, so any number of them
// fit under the unique index.
func usernameKey(username string) sql.NullString {
	key := common.FoldKey(username)
	return sql.NullString{String: key, Valid: key != ""}
}
