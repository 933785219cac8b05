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

// RefreshTokenRepository persists issued refresh tokens. Rows are only ever
// revoked in place; the cleanup job deletes rows that have expired.
type RefreshTokenRepository struct {
	pool *pgxpool.Pool
}

func NewRefreshTokenRepository(db *database.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: db.Pool}
}

func scanRefreshTokenRow(scanner rowScanner) (*models.RefreshToken, error) {
	var t models.RefreshToken
	if err := scanner.Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.CreatedAt, &t.Revoked); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &t, nil
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at, revoked)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query,
		token.ID, token.UserID, token.Token, token.ExpiresAt, token.CreatedAt, token.Revoked)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", database.MapPostgresError(err))
	}
	return nil
}

// GetActive returns the non-revoked row for token. Expiry is checked by the
// caller.
func (r *RefreshTokenRepository) GetActive(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, created_at, revoked
		FROM refresh_tokens
		WHERE token = $1 AND revoked = FALSE`
	return scanRefreshTokenRow(r.pool.QueryRow(ctx, query, token))
}

// Revoke flips revoked for the caller's token. Missing rows are not an error.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, token, userID string) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1 AND user_id = $2`
	if _, err := r.pool.Exec(ctx, query, token, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", database.MapPostgresError(err))
	}
	return nil
}

// DeleteExpired removes rows whose expiry is before the cutoff
func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
