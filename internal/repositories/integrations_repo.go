package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Hayacku/initium/internal/database"
	"github.com/Hayacku/initium/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type IntegrationsRepository struct {
	pool *pgxpool.Pool
}

func NewIntegrationsRepository(db *database.DB) *IntegrationsRepository {
	return &IntegrationsRepository{pool: db.Pool}
}

func scanWebhookRow(scanner rowScanner) (*models.Webhook, error) {
	var w models.Webhook
	err := scanner.Scan(&w.ID, &w.UserID, &w.Name, &w.URL, &w.Events, &w.Active, &w.Secret, &w.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &w, nil
}

func (r *IntegrationsRepository) CreateWebhook(ctx context.Context, w *models.Webhook) error {
	w.ID = uuid.New().String()
	w.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO webhooks (id, user_id, name, url, events, active, secret, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, query, w.ID, w.UserID, w.Name, w.URL, textArray(w.Events), w.Active, w.Secret, w.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create webhook: %w", database.MapPostgresError(err))
	}
	return nil
}

func (r *IntegrationsRepository) ListWebhooks(ctx context.Context, userID string) ([]*models.Webhook, error) {
	query := `
		SELECT id, user_id, name, url, events, active, secret, created_at
		FROM webhooks
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", err)
	}
	return collect(rows, scanWebhookRow)
}

// DeleteWebhook removes the caller's webhook. Missing or foreign ids are
// models.ErrNotFound.
func (r *IntegrationsRepository) DeleteWebhook(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return models.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM webhooks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *IntegrationsRepository) CreateIntegration(ctx context.Context, in *models.Integration) error {
	in.ID = uuid.New().String()
	in.CreatedAt = time.Now().UTC()
	if len(in.Settings) == 0 {
		in.Settings = json.RawMessage(`{}`)
	}

	query := `
		INSERT INTO integrations (id, user_id, provider, settings, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query, in.ID, in.UserID, in.Provider, in.Settings, in.Active, in.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to connect integration: %w", database.MapPostgresError(err))
	}
	return nil
}

func scanIntegrationRow(scanner rowScanner) (*models.Integration, error) {
	var in models.Integration
	if err := scanner.Scan(&in.ID, &in.UserID, &in.Provider, &in.Settings, &in.Active, &in.CreatedAt); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &in, nil
}

func (r *IntegrationsRepository) ListIntegrations(ctx context.Context, userID string) ([]*models.Integration, error) {
	query := `
		SELECT id, user_id, provider, settings, active, created_at
		FROM integrations
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list integrations: %w", err)
	}
	return collect(rows, scanIntegrationRow)
}
