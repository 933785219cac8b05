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

const OAuthAccountsIdentityKey = "oauth_accounts_provider_identity_key"

type OAuthAccountRepository struct {
	pool *pgxpool.Pool
}

func NewOAuthAccountRepository(db *database.DB) *OAuthAccountRepository {
	return &OAuthAccountRepository{pool: db.Pool}
}

func scanOAuthAccountRow(scanner rowScanner) (*models.OAuthAccount, error) {
	var a models.OAuthAccount
	err := scanner.Scan(&a.ID, &a.UserID, &a.Provider, &a.ProviderUserID,
		&a.AccessToken, &a.RefreshToken, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &a, nil
}

func (r *OAuthAccountRepository) GetByProviderID(ctx context.Context, provider, providerUserID string) (*models.OAuthAccount, error) {
	query := `
		SELECT id, user_id, provider, provider_user_id, access_token, refresh_token, created_at, updated_at
		FROM oauth_accounts
		WHERE provider = $1 AND provider_user_id = $2`
	return scanOAuthAccountRow(r.pool.QueryRow(ctx, query, provider, providerUserID))
}

// Create links an external identity. A second link for the same
// (provider, provider_user_id) returns models.ErrConflict.
func (r *OAuthAccountRepository) Create(ctx context.Context, account *models.OAuthAccount) error {
	account.ID = uuid.New().String()
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	query := `
		INSERT INTO oauth_accounts (id, user_id, provider, provider_user_id, access_token, refresh_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, query, account.ID, account.UserID, account.Provider, account.ProviderUserID,
		account.AccessToken, account.RefreshToken, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to link oauth account: %w", database.MapPostgresError(err))
	}
	return nil
}

// UpdateTokens stores the latest provider tokens seen for a link
func (r *OAuthAccountRepository) UpdateTokens(ctx context.Context, id, accessToken, refreshToken string) error {
	query := `
		UPDATE oauth_accounts
		SET access_token = $2, refresh_token = $3, updated_at = NOW()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, accessToken, refreshToken)
	if err != nil {
		return fmt.Errorf("failed to update oauth tokens: %w", database.MapPostgresError(err))
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
