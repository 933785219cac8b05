package handlers

import (
	"context"
	"net/http"

	"github.com/Hayacku/initium/internal/auth"
	"github.com/Hayacku/initium/internal/models"
	pkghttp "github.com/Hayacku/initium/pkg/http"
	"github.com/go-chi/chi/v5"
)

// PomodoroServiceInterface defines focus session operations
type PomodoroServiceInterface interface {
	Start(ctx context.Context, userID string, duration int, taskID *string, sessionType string) (*models.PomodoroSession, error)
	Complete(ctx context.Context, userID, sessionID string) (int, error)
	Stats(ctx context.Context, userID string) (*models.PomodoroStats, error)
}

// PomodoroHandler serves /pomodoro
type PomodoroHandler struct {
	service PomodoroServiceInterface
}

func NewPomodoroHandler(service PomodoroServiceInterface) *PomodoroHandler {
	return &PomodoroHandler{service: service}
}

// StartPomodoroRequest opens a session. Every field is optional.
type StartPomodoroRequest struct {
	Duration    int     `json:"duration"`
	TaskID      *string `json:"task_id,omitempty"`
	SessionType string  `json:"session_type"`
}

// Start handles POST /pomodoro/start
func (h *PomodoroHandler) Start(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	var req StartPomodoroRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	fromQuery(r, &req.SessionType, "session_type")
	optionalFromQuery(r, &req.TaskID, "task_id")
	if !intFromQuery(w, r, &req.Duration, "duration") {
		return
	}

	session, err := h.service.Start(r.Context(), user.ID, req.Duration, req.TaskID, req.SessionType)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, map[string]interface{}{
		"success":    true,
		"session_id": session.ID,
		"duration":   session.Duration,
	})
}

// Complete handles POST /pomodoro/complete/{session_id}
func (h *PomodoroHandler) Complete(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	xp, err := h.service.Complete(r.Context(), user.ID, chi.URLParam(r, "session_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, map[string]interface{}{"success": true, "xp_earned": xp})
}

// Stats handles GET /pomodoro/stats
func (h *PomodoroHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	stats, err := h.service.Stats(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, stats)
}
