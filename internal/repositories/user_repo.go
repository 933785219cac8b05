package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Hayacku/initium/internal/database"
	"github.com/Hayacku/initium/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Unique constraints on users, used to tell duplicate emails from usernames
const (
	UsersEmailKey    = "users_email_key"
	UsersUsernameKey = "users_username_key"
)

const userColumns = `id, email, username, password_hash, is_active, is_verified,
	level, xp, xp_to_next_level, avatar_url, two_fa_enabled, two_fa_secret,
	oauth_providers, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{pool: db.Pool}
}

func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User
	err := scanner.Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash,
		&user.IsActive, &user.IsVerified,
		&user.Level, &user.XP, &user.XPToNextLevel, &user.AvatarURL,
		&user.TwoFAEnabled, &user.TwoFASecret,
		&user.OAuthProviders, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &user, nil
}

// mapUserConflict turns a unique violation into the matching domain error
func mapUserConflict(err error) error {
	switch {
	case database.IsConstraint(err, UsersEmailKey):
		return models.ErrEmailTaken
	case database.IsConstraint(err, UsersUsernameKey):
		return models.ErrUsernameTaken
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUserRow(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUserRow(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUserRow(r.pool.QueryRow(ctx, query, username))
}

// Create inserts a user. Duplicate email or username yields
// models.ErrEmailTaken or models.ErrUsernameTaken.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Level == 0 {
		user.Level = 1
	}
	if user.XPToNextLevel == 0 {
		user.XPToNextLevel = 100
	}

	query := `
		INSERT INTO users (id, email, username, password_hash, is_active, is_verified,
			level, xp, xp_to_next_level, avatar_url, oauth_providers, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + userColumns

	created, err := scanUserRow(r.pool.QueryRow(ctx, query,
		user.ID, user.Email, user.Username, user.PasswordHash, user.IsActive, user.IsVerified,
		user.Level, user.XP, user.XPToNextLevel, user.AvatarURL, textArray(user.OAuthProviders),
		user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		return nil, mapUserConflict(err)
	}
	return created, nil
}

// Update applies the non-nil fields of upd
func (r *UserRepository) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	query := `
		UPDATE users SET
			username = COALESCE($2, username),
			email = COALESCE($3, email),
			avatar_url = COALESCE($4, avatar_url),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	updated, err := scanUserRow(r.pool.QueryRow(ctx, query, id, upd.Username, upd.Email, upd.AvatarURL))
	if err != nil {
		return nil, mapUserConflict(err)
	}
	return updated, nil
}

// SetTwoFA stores the 2FA flag and secret together. A nil secret clears it.
func (r *UserRepository) SetTwoFA(ctx context.Context, id string, enabled bool, secret *string) error {
	query := `UPDATE users SET two_fa_enabled = $2, two_fa_secret = $3, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, enabled, secret)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// AddOAuthProvider appends provider to oauth_providers unless already present
func (r *UserRepository) AddOAuthProvider(ctx context.Context, id, provider string) error {
	query := `
		UPDATE users SET
			oauth_providers = CASE WHEN $2 = ANY(oauth_providers) THEN oauth_providers
				ELSE array_append(oauth_providers, $2) END,
			updated_at = NOW()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, provider)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// AddXP increments the user's XP counter
func (r *UserRepository) AddXP(ctx context.Context, id string, amount int) error {
	return addXP(ctx, r.pool, id, amount)
}

func addXP(ctx context.Context, q database.Querier, id string, amount int) error {
	tag, err := q.Exec(ctx, `UPDATE users SET xp = xp + $2, updated_at = NOW() WHERE id = $1`, id, amount)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Leaderboard returns the top users by XP, ranked from 1
func (r *UserRepository) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT id, username, xp, level, avatar_url
		FROM users
		ORDER BY xp DESC, created_at ASC
		LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0, limit)
	for rows.Next() {
		e := models.LeaderboardEntry{Rank: len(entries) + 1}
		if err := rows.Scan(&e.UserID, &e.Username, &e.TotalXP, &e.Level, &e.AvatarURL); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return entries, nil
}

// CountWithMoreXP counts users strictly ahead of xp
func (r *UserRepository) CountWithMoreXP(ctx context.Context, xp int) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE xp > $1`, xp).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
