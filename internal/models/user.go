package models

import (
	"time"
)

// User is the identity record. PasswordHash is empty for OAuth-only accounts.
type User struct {
	ID             string
	Email          string
	Username       string
	PasswordHash   string
	IsActive       bool
	IsVerified     bool
	Level          int
	XP             int
	XPToNextLevel  int
	AvatarURL      *string
	TwoFAEnabled   bool
	TwoFASecret    *string
	OAuthProviders []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasPassword reports whether the account can sign in with a password
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// UserResponse is the public profile. It never carries secrets.
type UserResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	IsActive       bool      `json:"is_active"`
	IsVerified     bool      `json:"is_verified"`
	Level          int       `json:"level"`
	XP             int       `json:"xp"`
	XPToNextLevel  int       `json:"xp_to_next_level"`
	AvatarURL      *string   `json:"avatar_url"`
	TwoFAEnabled   bool      `json:"two_fa_enabled"`
	OAuthProviders []string  `json:"oauth_providers"`
	CreatedAt      time.Time `json:"created_at"`
}

// ToResponse converts a user to its public profile
func (u *User) ToResponse() *UserResponse {
	providers := u.OAuthProviders
	if providers == nil {
		providers = []string{}
	}
	return &UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		IsActive:       u.IsActive,
		IsVerified:     u.IsVerified,
		Level:          u.Level,
		XP:             u.XP,
		XPToNextLevel:  u.XPToNextLevel,
		AvatarURL:      u.AvatarURL,
		TwoFAEnabled:   u.TwoFAEnabled,
		OAuthProviders: providers,
		CreatedAt:      u.CreatedAt,
	}
}

// UserUpdate carries optional profile changes
type UserUpdate struct {
	Username  *string
	Email     *string
	AvatarURL *string
}
