package profiles

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

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Ensure creates the profile of userID if it does not exist yet. An existing
// profile is left untouched, including its username. A username held by
// another user yields common.ErrDuplicate.
func (r *SQLiteRepository) Ensure(ctx context.Context, userID, username string) error {
	now := dbx.ToMillis(time.Now())
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, username, username_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING
	`, userID, nullUsername(username), usernameKey(username), now, now)
	if dbx.IsUniqueViolation(err) {
		return fmt.Errorf("username %s: %w", username, common.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to ensure profile: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	var (
		p                    models.Profile
		username             sql.NullString
		onboarded, spot, apl int
		createdAt, updatedAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, display_name, username, bio, avatar_url, city,
		       onboarding_completed, connected_spotify, connected_apple_music,
		       created_at, updated_at
		FROM user_profiles WHERE user_id = ?
	`, userID).Scan(
		&p.UserID, &p.DisplayName, &username, &p.Bio, &p.AvatarURL, &p.City,
		&onboarded, &spot, &apl, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	p.Username = username.String
	p.OnboardingCompleted = onboarded != 0
	p.ConnectedMusic = models.ConnectedMusic{Spotify: spot != 0, AppleMusic: apl != 0}
	p.CreatedAt = dbx.FromMillis(createdAt)
	p.UpdatedAt = dbx.FromMillis(updatedAt)
	return &p, nil
}

// Update applies the non-nil fields of upd and returns the stored profile.
// An empty username clears it.
func (r *SQLiteRepository) Update(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.Profile, error) {
	sets := []string{"updated_at = ?"}
	args := []any{dbx.ToMillis(time.Now())}

	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if upd.DisplayName != nil {
		set("display_name", strings.TrimSpace(*upd.DisplayName))
	}
	if upd.Username != nil {
		set("username", nullUsername(*upd.Username))
		set("username_key", usernameKey(*upd.Username))
	}
	if upd.Bio != nil {
		set("bio", *upd.Bio)
	}
	if upd.AvatarURL != nil {
		set("avatar_url", *upd.AvatarURL)
	}
	if upd.City != nil {
		set("city", strings.TrimSpace(*upd.City))
	}
	if upd.ConnectedMusic != nil {
		set("connected_spotify", dbx.BoolToInt(upd.ConnectedMusic.Spotify))
		set("connected_apple_music", dbx.BoolToInt(upd.ConnectedMusic.AppleMusic))
	}
	args = append(args, userID)

	res, err := r.db.ExecContext(ctx,
		`UPDATE user_profiles SET `+strings.Join(sets, ", ")+` WHERE user_id = ?`, args...)
	if dbx.IsUniqueViolation(err) {
		return nil, fmt.Errorf("username: %w", common.ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, common.ErrNotFound
	}

	return r.Get(ctx, userID)
}

func (r *SQLiteRepository) CompleteOnboarding(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE user_profiles SET onboarding_completed = 1, updated_at = ? WHERE user_id = ?`,
		dbx.ToMillis(time.Now()), userID)
	if err != nil {
		return fmt.Errorf("failed to complete onboarding: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// UsernameTaken reports whether username, compared under Unicode case
// folding, belongs to a user other than exceptUserID.
func (r *SQLiteRepository) UsernameTaken(ctx context.Context, username, exceptUserID string) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_profiles WHERE username_key = ? AND user_id <> ?)`,
		common.FoldKey(username), exceptUserID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists == 1, nil
}

func nullUsername(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func usernameKey(s string) sql.NullString {
	key := common.FoldKey(s)
	return sql.NullString{String: key, Valid: key != ""}
}
