package handlers

import (
	"context"
	"net/http"

	"github.com/Hayacku/initium/internal/auth"
	"github.com/Hayacku/initium/internal/models"
	pkghttp "github.com/Hayacku/initium/pkg/http"
	"github.com/go-chi/chi/v5"
)

// HabitsServiceInterface defines mood and metric tracking
type HabitsServiceInterface interface {
	LogMood(ctx context.Context, entry *models.MoodEntry) error
	MoodHistory(ctx context.Context, userID string, days int) ([]*models.MoodEntry, error)
	LogMetric(ctx context.Context, metric *models.HabitMetric) error
	Metrics(ctx context.Context, userID, habitID string) ([]*models.HabitMetric, error)
}

// HabitsHandler serves /habits
type HabitsHandler struct {
	service HabitsServiceInterface
}

func NewHabitsHandler(service HabitsServiceInterface) *HabitsHandler {
	return &HabitsHandler{service: service}
}

// LogMoodRequest records a mood with an energy level from 1 to 5
type LogMoodRequest struct {
	Mood        string  `json:"mood" validate:"required,max=50"`
	EnergyLevel int     `json:"energy_level"`
	Notes       *string `json:"notes,omitempty"`
	HabitID     *string `json:"habit_id,omitempty"`
}

// LogMetricRequest records a numeric habit measurement
type LogMetricRequest struct {
	HabitID    string  `json:"habit_id" validate:"required"`
	MetricType string  `json:"metric_type" validate:"required,max=50"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit" validate:"required,max=20"`
}

// LogMood handles POST /habits/mood
func (h *HabitsHandler) LogMood(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	var req LogMoodRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	fromQuery(r, &req.Mood, "mood")
	optionalFromQuery(r, &req.Notes, "notes")
	optionalFromQuery(r, &req.HabitID, "habit_id")
	if !intFromQuery(w, r, &req.EnergyLevel, "energy_level") || !validBody(w, &req) {
		return
	}

	entry := &models.MoodEntry{
		UserID:      user.ID,
		HabitID:     req.HabitID,
		Mood:        req.Mood,
		EnergyLevel: req.EnergyLevel,
		Notes:       req.Notes,
	}
	if err := h.service.LogMood(r.Context(), entry); err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, map[string]interface{}{"success": true, "mood_id": entry.ID})
}

// MoodHistory handles GET /habits/mood?days=
func (h *HabitsHandler) MoodHistory(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	var days int
	if !intFromQuery(w, r, &days, "days") {
		return
	}

	moods, err := h.service.MoodHistory(r.Context(), user.ID, days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if moods == nil {
		moods = []*models.MoodEntry{}
	}
	pkghttp.WriteOK(w, map[string]interface{}{"moods": moods})
}

// LogMetric handles POST /habits/metrics
func (h *HabitsHandler) LogMetric(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	var req LogMetricRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	fromQuery(r, &req.HabitID, "habit_id")
	fromQuery(r, &req.MetricType, "metric_type")
	fromQuery(r, &req.Unit, "unit")
	if !floatFromQuery(w, r, &req.Value, "value") || !validBody(w, &req) {
		return
	}

	metric := &models.HabitMetric{
		UserID:     user.ID,
		HabitID:    req.HabitID,
		MetricType: req.MetricType,
		Value:      req.Value,
		Unit:       req.Unit,
	}
	if err := h.service.LogMetric(r.Context(), metric); err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, map[string]interface{}{"success": true, "metric_id": metric.ID})
}

// Metrics handles GET /habits/metrics/{habit_id}
func (h *HabitsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	metrics, err := h.service.Metrics(r.Context(), user.ID, chi.URLParam(r, "habit_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if metrics == nil {
		metrics = []*models.HabitMetric{}
	}
	pkghttp.WriteOK(w, map[string]interface{}{"metrics": metrics})
}
