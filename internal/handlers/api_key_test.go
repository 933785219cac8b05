package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Hayacku/initium/internal/handlers"
	"github.com/Hayacku/initium/internal/models"
	"github.com/stretchr/testify/assert"
)

func wrapBadRequest(msg string) error {
	return fmt.Errorf("%s: %w", msg, models.ErrBadRequest)
}

func TestCreateAPIKey_ReturnsRawKeyOnce(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		CreateAPIKeyFunc: func(ctx context.Context, userID, name, ip string) (*models.APIKeyResponse, error) {
			assert.Equal(t, "", name)
			return &models.APIKeyResponse{Key: "sk_rawsecret", Prefix: "sk_raws", Name: "Default Key", CreatedAt: time.Now()}, nil
		},
	}
	handler := handlers.NewAuthHandler(mockAuth, nil)
	req := handlers.WithUser(httptest.NewRequest("POST", "/auth/api-keys", nil), handlers.NewTestUser("user-1"))

	w := httptest.NewRecorder()
	handler.CreateAPIKey(w, req)

	var resp models.APIKeyResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "sk_rawsecret", resp.Key)
	assert.Equal(t, "Default Key", resp.Name)
}

func TestListAPIKeys_OmitsSecrets(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		ListAPIKeysFunc: func(ctx context.Context, userID string) ([]models.APIKeyInfo, error) {
			return []models.APIKeyInfo{{Prefix: "sk_abcd", Name: "ci"}}, nil
		},
	}
	handler := handlers.NewAuthHandler(mockAuth, nil)
	req := handlers.WithUser(httptest.NewRequest("GET", "/auth/api-keys", nil), handlers.NewTestUser("user-1"))

	w := httptest.NewRecorder()
	handler.ListAPIKeys(w, req)

	var resp handlers.ListAPIKeysResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Len(t, resp.APIKeys, 1)
	assert.Equal(t, "sk_abcd", resp.APIKeys[0].Prefix)
	assert.NotContains(t, w.Body.String(), "hashed")
}

func TestRevokeAPIKey_UsesPathPrefix(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		RevokeAPIKeyFunc: func(ctx context.Context, userID, prefix, ip string) error {
			assert.Equal(t, "user-1", userID)
			assert.Equal(t, "sk_abcd", prefix)
			return nil
		},
	}
	handler := handlers.NewAuthHandler(mockAuth, nil)
	req := httptest.NewRequest("DELETE", "/auth/api-keys/sk_abcd", nil)
	req = handlers.WithChiRouteContext(req, map[string]string{"prefix": "sk_abcd"})
	req = handlers.WithUser(req, handlers.NewTestUser("user-1"))

	w := httptest.NewRecorder()
	handler.RevokeAPIKey(w, req)

	var resp map[string]string
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "API key revoked", resp["message"])
}
