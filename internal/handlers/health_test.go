package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Hayacku/initium/internal/handlers"
	"github.com/stretchr/testify/assert"
)

func up(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func TestHealth(t *testing.T) {
	tests := []struct {
		name           string
		db             handlers.PingFunc
		cache          handlers.Pinger
		expectedStatus int
		expected       handlers.HealthResponse
	}{
		{
			name:           "all up",
			db:             up,
			cache:          handlers.PingFunc(up),
			expectedStatus: http.StatusOK,
			expected:       handlers.HealthResponse{Status: "healthy", Database: "up", Cache: "up"},
		},
		{
			name:           "database down",
			db:             down,
			cache:          handlers.PingFunc(up),
			expectedStatus: http.StatusServiceUnavailable,
			expected:       handlers.HealthResponse{Status: "unhealthy", Database: "down", Cache: "up"},
		},
		{
			name:           "cache down stays healthy",
			db:             up,
			cache:          handlers.PingFunc(down),
			expectedStatus: http.StatusOK,
			expected:       handlers.HealthResponse{Status: "healthy", Database: "up", Cache: "down"},
		},
		{
			name:           "no cache configured",
			db:             up,
			expectedStatus: http.StatusOK,
			expected:       handlers.HealthResponse{Status: "healthy", Database: "up"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewHealthHandler(tt.db, tt.cache)
			w := httptest.NewRecorder()

			h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			var resp handlers.HealthResponse
			handlers.AssertJSONResponse(t, w, tt.expectedStatus, &resp)
			assert.Equal(t, tt.expected, resp)
		})
	}
}
