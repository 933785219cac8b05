package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Hayacku/initium/internal/auth"
	"github.com/Hayacku/initium/internal/models"
)

// RefreshTokenRepository persists issued refresh tokens
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetActive(ctx context.Context, token string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, token, userID string) error
}

// SessionIssuer mints an access/refresh pair and records the refresh token.
// Password login, 2FA verification and OAuth sign-in all finish here.
type SessionIssuer struct {
	tm   *auth.TokenManager
	repo RefreshTokenRepository
	now  func() time.Time
}

func NewSessionIssuer(tm *auth.TokenManager, repo RefreshTokenRepository) *SessionIssuer {
	return &SessionIssuer{tm: tm, repo: repo, now: time.Now}
}

func (s *SessionIssuer) Issue(ctx context.Context, userID string) (*models.TokenPair, error) {
	access, err := s.tm.GenerateAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := s.tm.GenerateRefreshToken(userID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	record := &models.RefreshToken{
		UserID:    userID,
		Token:     refresh,
		ExpiresAt: s.now().Add(s.tm.RefreshTTL()).UTC(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return models.NewTokenPair(access, refresh), nil
}
