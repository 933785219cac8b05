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

const APIKeysUserPrefixKey = "api_keys_user_prefix_key"

const apiKeyColumns = `id, user_id, prefix, hashed_key, name, created_at, last_used`

type APIKeyRepository struct {
	pool *pgxpool.Pool
}

func NewAPIKeyRepository(db *database.DB) *APIKeyRepository {
	return &APIKeyRepository{pool: db.Pool}
}

func scanAPIKeyRow(scanner rowScanner) (*models.APIKey, error) {
	var k models.APIKey
	err := scanner.Scan(&k.ID, &k.UserID, &k.Prefix, &k.HashedKey, &k.Name, &k.CreatedAt, &k.LastUsed)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &k, nil
}

// Create stores a key digest. A prefix already used by the same user yields
// a ConstraintError on APIKeysUserPrefixKey.
func (r *APIKeyRepository) Create(ctx context.Context, key *models.APIKey) error {
	key.ID = uuid.New().String()
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO api_keys (id, user_id, prefix, hashed_key, name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query, key.ID, key.UserID, key.Prefix, key.HashedKey, key.Name, key.CreatedAt)
	if err != nil {
		return database.MapPostgresError(err)
	}
	return nil
}

func (r *APIKeyRepository) ListByUser(ctx context.Context, userID string) ([]*models.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE user_id = $1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	return collect(rows, scanAPIKeyRow)
}

// ListByPrefix returns every key sharing a display prefix, across users
func (r *APIKeyRepository) ListByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE prefix = $1`
	rows, err := r.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to look up api keys: %w", err)
	}
	return collect(rows, scanAPIKeyRow)
}

// DeleteByPrefix removes the caller's key. Deleting a missing key succeeds.
func (r *APIKeyRepository) DeleteByPrefix(ctx context.Context, userID, prefix string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM api_keys WHERE user_id = $1 AND prefix = $2`, userID, prefix); err != nil {
		return fmt.Errorf("failed to delete api key: %w", err)
	}
	return nil
}

func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `UPDATE api_keys SET last_used = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to touch api key: %w", err)
	}
	return nil
}
