package handlers

import (
	"net/http"

	"github.com/Hayacku/initium/internal/auth"
	pkghttp "github.com/Hayacku/initium/pkg/http"
)

// TwoFAEnableRequest confirms a secret returned by setup
type TwoFAEnableRequest struct {
	Code   string `json:"code" validate:"required,len=6,numeric"`
	Secret string `json:"secret" validate:"required"`
}

// TwoFACodeRequest carries a single authenticator code
type TwoFACodeRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// SetupTwoFA handles POST /auth/2fa/setup
func (h *AuthHandler) SetupTwoFA(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	setup, err := h.service.SetupTwoFA(user)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteOK(w, setup)
}

// EnableTwoFA handles POST /auth/2fa/enable
func (h *AuthHandler) EnableTwoFA(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	var req TwoFAEnableRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	fromQuery(r, &req.Code, "code")
	fromQuery(r, &req.Secret, "secret")
	if !validBody(w, &req) {
		return
	}

	if err := h.service.EnableTwoFA(r.Context(), user, req.Code, req.Secret, h.clientIP(r)); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteMessage(w, "2FA enabled successfully")
}

// DisableTwoFA handles POST /auth/2fa/disable
func (h *AuthHandler) DisableTwoFA(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	var req TwoFACodeRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	fromQuery(r, &req.Code, "code")
	if !validBody(w, &req) {
		return
	}

	if err := h.service.DisableTwoFA(r.Context(), user, req.Code, h.clientIP(r)); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteMessage(w, "2FA disabled successfully")
}

// VerifyTwoFA handles POST /auth/2fa/verify?user_id=. It is unauthenticated
// and exchanges a valid code for a fresh token pair.
func (h *AuthHandler) VerifyTwoFA(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "user_id is required")
		return
	}

	var req TwoFACodeRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	fromQuery(r, &req.Code, "code")
	if !validBody(w, &req) {
		return
	}

	pair, err := h.service.VerifyTwoFA(r.Context(), userID, req.Code, h.clientIP(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteOK(w, pair)
}
