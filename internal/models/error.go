package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrNotImplemented = errors.New("not implemented")
	ErrInternalServer = errors.New("internal server error")
)

// Domain errors. Each wraps one of the sentinels above so handlers can switch
// on the broad category and still pick a specific message.
var (
	ErrEmailTaken         = fmt.Errorf("email already registered: %w", ErrConflict)
	ErrUsernameTaken      = fmt.Errorf("username already taken: %w", ErrConflict)
	ErrAccountDisabled    = fmt.Errorf("user account is disabled: %w", ErrForbidden)
	ErrInvalidCredentials = fmt.Errorf("incorrect email or password: %w", ErrUnauthorized)
	ErrInvalidRefresh     = fmt.Errorf("invalid refresh token: %w", ErrUnauthorized)
	ErrUserNotFound       = fmt.Errorf("user not found: %w", ErrNotFound)
	ErrTwoFAUnavailable   = fmt.Errorf("2FA is not enabled for this user: %w", ErrBadRequest)
	ErrGuildNotFound      = fmt.Errorf("guild not found: %w", ErrNotFound)
	ErrWebhookNotFound    = fmt.Errorf("webhook not found: %w", ErrNotFound)
	ErrSessionNotFound    = fmt.Errorf("pomodoro session not found: %w", ErrNotFound)
	ErrInvalidTOTPCode    = fmt.Errorf("invalid verification code: %w", ErrBadRequest)
	ErrTwoFANotEnabled    = fmt.Errorf("2FA is not enabled: %w", ErrBadRequest)
	ErrInvalidLoginCode   = fmt.Errorf("invalid verification code: %w", ErrUnauthorized)
	ErrInvalidAPIKey      = fmt.Errorf("invalid api key: %w", ErrUnauthorized)
	ErrInvalidSession     = fmt.Errorf("refresh token not found or revoked: %w", ErrUnauthorized)
	ErrSessionExpired     = fmt.Errorf("refresh token expired: %w", ErrUnauthorized)
	ErrInvalidCollection  = fmt.Errorf("invalid collection name: %w", ErrBadRequest)
	ErrInvalidDocumentID  = fmt.Errorf("document id must be a string or a number: %w", ErrBadRequest)
	ErrUnknownProvider    = fmt.Errorf("unknown integration provider: %w", ErrBadRequest)

	ErrProviderNotConfigured = fmt.Errorf("oauth provider not configured: %w", ErrNotImplemented)
	ErrGoogleNotConfigured   = fmt.Errorf("google: %w", ErrProviderNotConfigured)
	ErrGitHubNotConfigured   = fmt.Errorf("github: %w", ErrProviderNotConfigured)
	ErrProviderExchange      = fmt.Errorf("oauth code exchange failed: %w", ErrBadRequest)
	ErrNoProviderEmail       = fmt.Errorf("could not get email from provider: %w", ErrBadRequest)
	ErrMissingIdentity       = fmt.Errorf("could not extract user information from token: %w", ErrBadRequest)
)
