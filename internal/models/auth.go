package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token kinds carried in the "type" claim
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenClaims is the JWT payload. The subject (sub) is the user id.
type TokenClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token
func (c *TokenClaims) UserID() string {
	return c.Subject
}

// RefreshToken is a persisted refresh token. Rows are never mutated except
// to flip Revoked.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	Revoked   bool
}

// Usable reports whether the token can still be exchanged for an access token
func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

// OAuthAccount links an external identity to a local user
type OAuthAccount struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	AccessToken    string
	RefreshToken   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TokenPair is returned by every successful sign-in path
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// NewTokenPair builds a bearer token pair
func NewTokenPair(access, refresh string) *TokenPair {
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}
}
