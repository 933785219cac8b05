package handlers

import (
	"context"
	"net/http"

	"github.com/Hayacku/initium/internal/auth"
	"github.com/Hayacku/initium/internal/models"
	pkghttp "github.com/Hayacku/initium/pkg/http"
)

// AuthServiceInterface defines the account operations used by AuthHandler
type AuthServiceInterface interface {
	Register(ctx context.Context, email, username, password, ip string) (*models.User, error)
	Login(ctx context.Context, email, password, ip string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, userID, refreshToken, ip string) error
	UpdateProfile(ctx context.Context, userID string, upd models.UserUpdate, ip string) (*models.User, error)

	SetupTwoFA(user *models.User) (*models.TwoFASetup, error)
	EnableTwoFA(ctx context.Context, user *models.User, code, secret, ip string) error
	DisableTwoFA(ctx context.Context, user *models.User, code, ip string) error
	VerifyTwoFA(ctx context.Context, userID, code, ip string) (*models.TokenPair, error)

	CreateAPIKey(ctx context.Context, userID, name, ip string) (*models.APIKeyResponse, error)
	ListAPIKeys(ctx context.Context, userID string) ([]models.APIKeyInfo, error)
	RevokeAPIKey(ctx context.Context, userID, prefix, ip string) error
}

// AuthHandler handles account, session, 2FA and API key requests
type AuthHandler struct {
	service  AuthServiceInterface
	ipConfig *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		ipConfig: ipConfig,
	}
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries a refresh token for refresh and logout
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UpdateProfileRequest carries optional profile changes
type UpdateProfileRequest struct {
	Username  *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Username, req.Password, h.clientIP(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, user.ToResponse())
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pair, err := h.service.Login(r.Context(), req.Email, req.Password, h.clientIP(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteOK(w, pair)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteOK(w, pair)
}

// Logout handles POST /auth/logout. The refresh token is revoked only when
// it belongs to the caller.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	var req RefreshRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.Logout(r.Context(), user.ID, req.RefreshToken, h.clientIP(r)); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteMessage(w, "Successfully logged out")
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}
	pkghttp.WriteOK(w, user.ToResponse())
}

// UpdateMe handles PATCH /auth/me
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), user.ID, models.UserUpdate{
		Username:  req.Username,
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
	}, h.clientIP(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteOK(w, updated.ToResponse())
}

func (h *AuthHandler) clientIP(r *http.Request) string {
	return pkghttp.ExtractClientIP(r, h.ipConfig)
}
