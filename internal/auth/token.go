package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/Hayacku/initium/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default lifetimes
const (
	DefaultAccessTTL  = 30 * time.Minute
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

// TokenManager signs and verifies HS256 session tokens
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager creates a TokenManager. Zero TTLs fall back to the defaults.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// RefreshTTL is the lifetime given to refresh tokens and their stored rows
func (tm *TokenManager) RefreshTTL() time.Duration {
	return tm.refreshTTL
}

// Issue signs a token of the given kind for subject
func (tm *TokenManager) Issue(subject, kind string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("token subject cannot be empty")
	}
	now := tm.now()
	claims := &models.TokenClaims{
		Type: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", kind, err)
	}
	return signed, nil
}

func (tm *TokenManager) GenerateAccessToken(userID string) (string, error) {
	return tm.Issue(userID, models.TokenTypeAccess, tm.accessTTL)
}

func (tm *TokenManager) GenerateRefreshToken(userID string) (string, error) {
	return tm.Issue(userID, models.TokenTypeRefresh, tm.refreshTTL)
}

// Verify checks signature, expiry and that the type claim equals expectedKind.
// Every failure is reported as models.ErrUnauthorized.
func (tm *TokenManager) Verify(tokenString, expectedKind string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil || !token.Valid {
		return nil, models.ErrUnauthorized
	}

	if claims.Type != expectedKind || claims.Subject == "" {
		return nil, models.ErrUnauthorized
	}
	return claims, nil
}
