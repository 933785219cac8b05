package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Hayacku/initium/internal/models"
	pkghttp "github.com/Hayacku/initium/pkg/http"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// domainErrors maps specific service errors to their client message. The
// first match wins, so narrower errors come before the ones they wrap.
var domainErrors = []errorMapping{
	{models.ErrEmailTaken, http.StatusBadRequest, "bad_request", "Email already registered"},
	{models.ErrUsernameTaken, http.StatusBadRequest, "bad_request", "Username already taken"},
	{models.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized", "Incorrect email or password"},
	{models.ErrAccountDisabled, http.StatusForbidden, "forbidden", "User account is disabled"},
	{models.ErrInvalidRefresh, http.StatusUnauthorized, "unauthorized", "Invalid refresh token"},
	{models.ErrInvalidSession, http.StatusUnauthorized, "unauthorized", "Refresh token not found or revoked"},
	{models.ErrSessionExpired, http.StatusUnauthorized, "unauthorized", "Refresh token expired"},
	{models.ErrUserNotFound, http.StatusNotFound, "not_found", "User not found"},
	{models.ErrTwoFAUnavailable, http.StatusBadRequest, "bad_request", "2FA is not enabled for this user"},
	{models.ErrTwoFANotEnabled, http.StatusBadRequest, "bad_request", "2FA is not enabled"},
	{models.ErrInvalidTOTPCode, http.StatusBadRequest, "bad_request", "Invalid verification code"},
	{models.ErrInvalidLoginCode, http.StatusUnauthorized, "unauthorized", "Invalid verification code"},
	{models.ErrGuildNotFound, http.StatusNotFound, "not_found", "Guild not found"},
	{models.ErrWebhookNotFound, http.StatusNotFound, "not_found", "Webhook not found"},
	{models.ErrSessionNotFound, http.StatusNotFound, "not_found", "Pomodoro session not found"},
	{models.ErrUnknownProvider, http.StatusBadRequest, "bad_request", "Unknown integration provider"},
	{models.ErrGoogleNotConfigured, http.StatusNotImplemented, "not_implemented", "Google OAuth not configured. Please set GOOGLE_CLIENT_ID in .env"},
	{models.ErrGitHubNotConfigured, http.StatusNotImplemented, "not_implemented", "GitHub OAuth not configured"},
	{models.ErrNoProviderEmail, http.StatusBadRequest, "bad_request", "Could not retrieve email from GitHub"},
	{models.ErrMissingIdentity, http.StatusBadRequest, "bad_request", "Could not extract user information from token"},
}

// writeServiceError translates a service error into a JSON error response.
// Anything unrecognised is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	for _, m := range domainErrors {
		if !errors.Is(err, m.err) {
			continue
		}
		if m.status == http.StatusUnauthorized {
			pkghttp.WriteUnauthorized(w, m.message)
		} else {
			pkghttp.WriteError(w, m.status, m.code, m.message)
		}
		return
	}

	switch {
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, clientMessage(err, models.ErrBadRequest))
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "Forbidden")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Not found")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "Resource already exists")
	case errors.Is(err, models.ErrNotImplemented):
		pkghttp.WriteNotImplemented(w, "Not implemented")
	default:
		if !errors.Is(err, models.ErrInternalServer) {
			slog.Error("unhandled service error", slog.Any("error", err))
		}
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// categorized reports whether err carries one of the models error
// categories, so writeServiceError has a specific mapping for it
func categorized(err error) bool {
	for _, category := range []error{
		models.ErrBadRequest, models.ErrUnauthorized, models.ErrForbidden,
		models.ErrNotFound, models.ErrConflict, models.ErrNotImplemented,
		models.ErrInternalServer,
	} {
		if errors.Is(err, category) {
			return true
		}
	}
	return false
}

// clientMessage strips the trailing category from a wrapped error so the
// client sees only the specific reason.
func clientMessage(err, category error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+category.Error())
	if msg == "" {
		return category.Error()
	}
	return msg
}
