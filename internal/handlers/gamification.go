package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Hayacku/initium/internal/auth"
	"github.com/Hayacku/initium/internal/models"
	pkghttp "github.com/Hayacku/initium/pkg/http"
	"github.com/go-chi/chi/v5"
)

const maxLeaderboardLimit = 100

// GamificationServiceInterface defines achievement, leaderboard and guild operations
type GamificationServiceInterface interface {
	Achievements(ctx context.Context) ([]*models.Achievement, error)
	UserAchievements(ctx context.Context, userID string) ([]*models.UserAchievement, int, error)
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	MyRank(ctx context.Context, user *models.User) (*models.Rank, error)
	CreateGuild(ctx context.Context, ownerID, name, description, icon string) (*models.Guild, error)
	Guilds(ctx context.Context) ([]*models.Guild, error)
	JoinGuild(ctx context.Context, guildID, userID string) (bool, error)
}

// GamificationHandler serves /gamification
type GamificationHandler struct {
	service GamificationServiceInterface
}

func NewGamificationHandler(service GamificationServiceInterface) *GamificationHandler {
	return &GamificationHandler{service: service}
}

// CreateGuildRequest is the body of POST /gamification/guilds
type CreateGuildRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Icon        string `json:"icon" validate:"max=16"`
}

// Achievements handles GET /gamification/achievements
func (h *GamificationHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Achievements(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if list == nil {
		list = []*models.Achievement{}
	}
	pkghttp.WriteOK(w, list)
}

// MyAchievements handles GET /gamification/my-achievements
func (h *GamificationHandler) MyAchievements(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	unlocked, total, err := h.service.UserAchievements(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if unlocked == nil {
		unlocked = []*models.UserAchievement{}
	}
	pkghttp.WriteOK(w, map[string]interface{}{
		"unlocked": unlocked,
		"total":    total,
	})
}

// Leaderboard handles GET /gamification/leaderboard?limit=
func (h *GamificationHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := maxLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLeaderboardLimit {
			pkghttp.WriteBadRequest(w, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	entries, err := h.service.Leaderboard(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, map[string]interface{}{"leaderboard": entries})
}

// MyRank handles GET /gamification/my-rank
func (h *GamificationHandler) MyRank(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	rank, err := h.service.MyRank(r.Context(), user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, rank)
}

// CreateGuild handles POST /gamification/guilds
func (h *GamificationHandler) CreateGuild(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	var req CreateGuildRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	fromQuery(r, &req.Name, "name")
	fromQuery(r, &req.Description, "description")
	fromQuery(r, &req.Icon, "icon")
	if !validBody(w, &req) {
		return
	}

	guild, err := h.service.CreateGuild(r.Context(), user.ID, req.Name, req.Description, req.Icon)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, map[string]interface{}{"success": true, "guild_id": guild.ID})
}

// Guilds handles GET /gamification/guilds
func (h *GamificationHandler) Guilds(w http.ResponseWriter, r *http.Request) {
	guilds, err := h.service.Guilds(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if guilds == nil {
		guilds = []*models.Guild{}
	}
	pkghttp.WriteOK(w, map[string]interface{}{"guilds": guilds})
}

// JoinGuild handles POST /gamification/guilds/{guild_id}/join
func (h *GamificationHandler) JoinGuild(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	joined, err := h.service.JoinGuild(r.Context(), chi.URLParam(r, "guild_id"), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	message := "Joined guild"
	if !joined {
		message = "Already a member"
	}
	pkghttp.WriteOK(w, map[string]interface{}{"success": true, "message": message})
}
