package handlers

import (
	"net/http"

	"github.com/Hayacku/initium/internal/auth"
	"github.com/Hayacku/initium/internal/models"
	pkghttp "github.com/Hayacku/initium/pkg/http"
	"github.com/go-chi/chi/v5"
)

// CreateAPIKeyRequest names a new key. An empty name gets a default.
type CreateAPIKeyRequest struct {
	Name string `json:"name" validate:"max=100"`
}

// ListAPIKeysResponse wraps the caller's keys
type ListAPIKeysResponse struct {
	APIKeys []models.APIKeyInfo `json:"api_keys"`
}

// CreateAPIKey handles POST /auth/api-keys. The raw key is only ever
// returned here.
func (h *AuthHandler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	var req CreateAPIKeyRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	fromQuery(r, &req.Name, "name")
	if !validBody(w, &req) {
		return
	}

	key, err := h.service.CreateAPIKey(r.Context(), user.ID, req.Name, h.clientIP(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteOK(w, key)
}

// ListAPIKeys handles GET /auth/api-keys
func (h *AuthHandler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	keys, err := h.service.ListAPIKeys(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteOK(w, ListAPIKeysResponse{APIKeys: keys})
}

// RevokeAPIKey handles DELETE /auth/api-keys/{prefix}
func (h *AuthHandler) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	prefix := chi.URLParam(r, "prefix")
	if prefix == "" {
		pkghttp.WriteBadRequest(w, "API key prefix is required")
		return
	}

	if err := h.service.RevokeAPIKey(r.Context(), user.ID, prefix, h.clientIP(r)); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteMessage(w, "API key revoked")
}
