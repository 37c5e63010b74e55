package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gigbook/internal/client/models"
	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/dmitrijs2005/gigbook/internal/dbx"
)

const selectUser = `SELECT id, email, server_id, password_salt, password_hash, created_at FROM users`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts u with its email normalized. A zero CreatedAt is set to now.
func (r *SQLiteRepository) Create(ctx context.Context, u *models.User) error {
	u.Email = common.NormalizeEmail(u.Email)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, server_id, password_salt, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.ID, u.Email, nullString(u.ServerID), u.Password.Salt, u.Password.Hash, dbx.ToMillis(u.CreatedAt))
	if dbx.IsUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", u.Email, common.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = ?`, id)
}

func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE email = ?`, common.NormalizeEmail(email))
}

func (r *SQLiteRepository) GetByServerID(ctx context.Context, serverID string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE server_id = ?`, serverID)
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	var (
		u         models.User
		serverID  sql.NullString
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &serverID, &u.Password.Salt, &u.Password.Hash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.ServerID = serverID.String
	u.CreatedAt = dbx.FromMillis(createdAt)
	return &u, nil
}

// UpdateEmail replaces the email of user id. Another row holding the same
// email yields common.ErrDuplicate.
func (r *SQLiteRepository) UpdateEmail(ctx context.Context, id, email string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET email = ? WHERE id = ?`, common.NormalizeEmail(email), id)
	if dbx.IsUniqueViolation(err) {
		return fmt.Errorf("email %s: %w", email, common.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to update user email: %w", err)
	}
	return requireOne(res)
}

// BindServerID records the server-issued id of user id.
func (r *SQLiteRepository) BindServerID(ctx context.Context, id, serverID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET server_id = ? WHERE id = ?`, serverID, id)
	if dbx.IsUniqueViolation(err) {
		return fmt.Errorf("server id %s: %w", serverID, common.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to bind server id: %w", err)
	}
	return requireOne(res)
}

// Delete removes the user; profile and attendance rows cascade. Deleting an
// absent user is a no-op.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func requireOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
