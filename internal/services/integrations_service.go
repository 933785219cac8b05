package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/Hayacku/initium/internal/models"
)

// IntegrationsRepository defines webhook and connection storage
type IntegrationsRepository interface {
	CreateWebhook(ctx context.Context, w *models.Webhook) error
	ListWebhooks(ctx context.Context, userID string) ([]*models.Webhook, error)
	DeleteWebhook(ctx context.Context, userID, id string) error
	CreateIntegration(ctx context.Context, in *models.Integration) error
	ListIntegrations(ctx context.Context, userID string) ([]*models.Integration, error)
}

// IntegrationCatalog resolves provider ids
type IntegrationCatalog interface {
	Integration(id string) (models.AvailableIntegration, bool)
}

var mockSettings = json.RawMessage(`{"mock": true}`)

type IntegrationsService struct {
	repo      IntegrationsRepository
	catalog   IntegrationCatalog
	available []models.AvailableIntegration
	logger    *slog.Logger
}

func NewIntegrationsService(repo IntegrationsRepository, catalog IntegrationCatalog, available []models.AvailableIntegration, logger *slog.Logger) *IntegrationsService {
	return &IntegrationsService{repo: repo, catalog: catalog, available: available, logger: logger}
}

func (s *IntegrationsService) CreateWebhook(ctx context.Context, w *models.Webhook) error {
	if w.Events == nil {
		w.Events = []string{}
	}
	if err := s.repo.CreateWebhook(ctx, w); err != nil {
		s.logger.Error("failed to create webhook", slog.String("user_id", w.UserID), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

func (s *IntegrationsService) Webhooks(ctx context.Context, userID string) ([]*models.Webhook, error) {
	hooks, err := s.repo.ListWebhooks(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list webhooks", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return hooks, nil
}

func (s *IntegrationsService) DeleteWebhook(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteWebhook(ctx, userID, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrWebhookNotFound
		}
		s.logger.Error("failed to delete webhook", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

// Available lists the providers a user can connect
func (s *IntegrationsService) Available() []models.AvailableIntegration {
	return s.available
}

// Connect records a mocked connection to a known provider
func (s *IntegrationsService) Connect(ctx context.Context, userID, provider string) (*models.Integration, error) {
	if _, ok := s.catalog.Integration(provider); !ok {
		return nil, models.ErrUnknownProvider
	}
	in := &models.Integration{UserID: userID, Provider: provider, Settings: mockSettings, Active: true}
	if err := s.repo.CreateIntegration(ctx, in); err != nil {
		s.logger.Error("failed to connect integration", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return in, nil
}

func (s *IntegrationsService) Connected(ctx context.Context, userID string) ([]*models.Integration, error) {
	list, err := s.repo.ListIntegrations(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list integrations", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return list, nil
}
