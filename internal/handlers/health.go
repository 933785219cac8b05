package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	pkghttp "github.com/Hayacku/initium/pkg/http"
)

const healthTimeout = 2 * time.Second

// Pinger is satisfied by the database and the cache
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthResponse reports the state of each dependency
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache,omitempty"`
}

// HealthHandler serves /health. The cache is optional.
type HealthHandler struct {
	db    Pinger
	cache Pinger
}

func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Health answers 503 when the database is unreachable. A failing cache is
// reported but does not make the service unhealthy.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := HealthResponse{Status: "healthy", Database: "up"}
	status := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		slog.Warn("health check: database unreachable", slog.Any("error", err))
		resp.Status = "unhealthy"
		resp.Database = "down"
		status = http.StatusServiceUnavailable
	}

	if h.cache != nil {
		resp.Cache = "up"
		if err := h.cache.Ping(ctx); err != nil {
			slog.Warn("health check: cache unreachable", slog.Any("error", err))
			resp.Cache = "down"
		}
	}

	pkghttp.WriteJSON(w, status, resp)
}
