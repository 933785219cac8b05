package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Hayacku/initium/internal/models"
	"github.com/Hayacku/initium/internal/oauth"
	pkghttp "github.com/Hayacku/initium/pkg/http"
)

// OAuthServiceInterface defines the provider sign-in operations
type OAuthServiceInterface interface {
	GoogleSignIn(ctx context.Context, idToken, ip string) (*models.TokenPair, error)
	GitHubLoginURL() (string, error)
	GitHubCallback(ctx context.Context, code, ip string) (string, error)
}

// OAuthHandler handles Google and GitHub sign-in
type OAuthHandler struct {
	service  OAuthServiceInterface
	ipConfig *pkghttp.IPConfig
}

// NewOAuthHandler creates a new OAuthHandler
func NewOAuthHandler(service OAuthServiceInterface, ipConfig *pkghttp.IPConfig) *OAuthHandler {
	return &OAuthHandler{service: service, ipConfig: ipConfig}
}

// GoogleVerifyRequest carries a Firebase or Google ID token
type GoogleVerifyRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// GoogleVerify handles POST /oauth/google/verify
func (h *OAuthHandler) GoogleVerify(w http.ResponseWriter, r *http.Request) {
	var req GoogleVerifyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pair, err := h.service.GoogleSignIn(r.Context(), req.IDToken, pkghttp.ExtractClientIP(r, h.ipConfig))
	switch {
	case err == nil:
		pkghttp.WriteOK(w, pair)
	case errors.Is(err, oauth.ErrInvalidIDToken):
		detail := strings.TrimPrefix(err.Error(), oauth.ErrInvalidIDToken.Error()+": ")
		pkghttp.WriteUnauthorized(w, "Invalid Firebase ID token: "+detail)
	case categorized(err):
		writeServiceError(w, err)
	default:
		pkghttp.WriteInternalError(w, "Error verifying Google token: "+err.Error())
	}
}

// GoogleLink handles POST /oauth/google/link. Linking happens on the
// frontend through Firebase, so this only points clients there.
func (h *OAuthHandler) GoogleLink(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteOK(w, map[string]string{
		"message": "Google OAuth is handled by Firebase on frontend",
		"status":  "use_firebase_auth",
	})
}

// GitHubLogin handles GET /oauth/github/login
func (h *OAuthHandler) GitHubLogin(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.service.GitHubLoginURL()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, map[string]string{"authorization_url": authURL})
}

// GitHubCallback handles GET /oauth/github/callback?code= and redirects the
// browser to the frontend with the issued tokens.
func (h *OAuthHandler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		pkghttp.WriteBadRequest(w, "Missing authorization code")
		return
	}

	redirect, err := h.service.GitHubCallback(r.Context(), code, pkghttp.ExtractClientIP(r, h.ipConfig))
	if err != nil {
		var exchangeErr *oauth.ExchangeError
		switch {
		case errors.As(err, &exchangeErr):
			pkghttp.WriteBadRequest(w, exchangeErr.Error())
		case categorized(err):
			writeServiceError(w, err)
		default:
			pkghttp.WriteInternalError(w, "Error during GitHub authentication: "+err.Error())
		}
		return
	}

	http.Redirect(w, r, redirect, http.StatusFound)
}
