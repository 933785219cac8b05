package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Hayacku/initium/internal/models"
	pkghttp "github.com/Hayacku/initium/pkg/http"
)

type contextKey string

const (
	// UserContextKey holds the verified *models.TokenClaims
	UserContextKey contextKey = "user"
	// CurrentUserContextKey holds the loaded *models.User
	CurrentUserContextKey contextKey = "current_user"

	// APIKeyHeader carries a raw API key as an alternative to a bearer token
	APIKeyHeader = "X-API-Key"
	// TokenTypeAPIKey marks claims synthesised from an API key
	TokenTypeAPIKey = "api_key"
)

const credentialsError = "Could not validate credentials"

// UserRepository loads the account behind a verified credential
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// APIKeyRepository resolves API keys by display prefix
type APIKeyRepository interface {
	ListByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	TouchLastUsed(ctx context.Context, id string) error
}

// Authenticator holds what AuthMiddleware needs to resolve a caller
type Authenticator struct {
	tokens  *TokenManager
	keys    *APIKeyManager
	users   UserRepository
	apiKeys APIKeyRepository
	logger  *slog.Logger
}

// NewAuthenticator wires the middleware. apiKeys may be nil to disable
// X-API-Key authentication.
func NewAuthenticator(tokens *TokenManager, keys *APIKeyManager, users UserRepository, apiKeys APIKeyRepository, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{tokens: tokens, keys: keys, users: users, apiKeys: apiKeys, logger: logger}
}

// AuthMiddleware accepts a bearer access token or an X-API-Key header. The
// resolved user must exist and be active.
func (a *Authenticator) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			claims *models.TokenClaims
			user   *models.User
			err    error
		)

		if raw := r.Header.Get(APIKeyHeader); raw != "" && a.apiKeys != nil {
			claims, user, err = a.fromAPIKey(r.Context(), raw)
		} else {
			claims, user, err = a.fromBearer(r.Context(), r.Header.Get("Authorization"))
		}

		if err != nil {
			if !errors.Is(err, models.ErrUnauthorized) {
				a.logger.Error("authentication lookup failed", slog.Any("error", err))
				pkghttp.WriteInternalError(w, "Internal server error")
				return
			}
			pkghttp.WriteUnauthorized(w, credentialsError)
			return
		}

		if !user.IsActive {
			pkghttp.WriteForbidden(w, "Inactive user")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		ctx = context.WithValue(ctx, CurrentUserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) fromBearer(ctx context.Context, header string) (*models.TokenClaims, *models.User, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, nil, models.ErrUnauthorized
	}

	claims, err := a.tokens.Verify(strings.TrimSpace(token), models.TokenTypeAccess)
	if err != nil {
		return nil, nil, models.ErrUnauthorized
	}

	user, err := a.loadUser(ctx, claims.UserID())
	if err != nil {
		return nil, nil, err
	}
	return claims, user, nil
}

func (a *Authenticator) fromAPIKey(ctx context.Context, raw string) (*models.TokenClaims, *models.User, error) {
	prefix, err := a.keys.Prefix(raw)
	if err != nil {
		return nil, nil, models.ErrUnauthorized
	}

	candidates, err := a.apiKeys.ListByPrefix(ctx, prefix)
	if err != nil {
		return nil, nil, err
	}
	for _, key := range candidates {
		if !a.keys.Verify(raw, key.HashedKey) {
			continue
		}
		user, err := a.loadUser(ctx, key.UserID)
		if err != nil {
			return nil, nil, err
		}
		if err := a.apiKeys.TouchLastUsed(ctx, key.ID); err != nil {
			a.logger.Warn("failed to record api key use", slog.String("user_id", key.UserID), slog.Any("error", err))
		}
		claims := &models.TokenClaims{Type: TokenTypeAPIKey}
		claims.Subject = user.ID
		return claims, user, nil
	}
	return nil, nil, models.ErrUnauthorized
}

func (a *Authenticator) loadUser(ctx context.Context, id string) (*models.User, error) {
	user, err := a.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// GetUserFromContext returns the verified claims, or nil outside AuthMiddleware
func GetUserFromContext(r *http.Request) *models.TokenClaims {
	claims, ok := r.Context().Value(UserContextKey).(*models.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

// GetCurrentUser returns the authenticated account, or nil outside AuthMiddleware
func GetCurrentUser(r *http.Request) *models.User {
	user, ok := r.Context().Value(CurrentUserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// WithCurrentUser stores user and matching claims on ctx. Handler tests use
// it to skip the middleware.
func WithCurrentUser(ctx context.Context, user *models.User) context.Context {
	claims := &models.TokenClaims{Type: models.TokenTypeAccess}
	claims.Subject = user.ID
	ctx = context.WithValue(ctx, UserContextKey, claims)
	return context.WithValue(ctx, CurrentUserContextKey, user)
}
