package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Hayacku/initium/internal/handlers"
	"github.com/Hayacku/initium/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestLeaderboard_Limit(t *testing.T) {
	var gotLimit int
	svc := &handlers.MockGamificationService{
		LeaderboardFunc: func(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
			gotLimit = limit
			return []models.LeaderboardEntry{{Rank: 1, Username: "top", TotalXP: 500}}, nil
		},
	}
	handler := handlers.NewGamificationHandler(svc)

	t.Run("default", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Leaderboard(w, httptest.NewRequest("GET", "/gamification/leaderboard", nil))

		var resp struct {
			Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
		}
		handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
		assert.Equal(t, 100, gotLimit)
		assert.Len(t, resp.Leaderboard, 1)
	})

	t.Run("explicit", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Leaderboard(w, httptest.NewRequest("GET", "/gamification/leaderboard?limit=10", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 10, gotLimit)
	})

	for _, raw := range []string{"0", "101", "abc"} {
		t.Run("invalid "+raw, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Leaderboard(w, httptest.NewRequest("GET", "/gamification/leaderboard?limit="+raw, nil))

			handlers.AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request", "limit must be between 1 and 100")
		})
	}
}

func TestMyAchievements_ReportsTotal(t *testing.T) {
	svc := &handlers.MockGamificationService{
		UserAchievementsFunc: func(ctx context.Context, userID string) ([]*models.UserAchievement, int, error) {
			return []*models.UserAchievement{{AchievementID: "a1"}}, 42, nil
		},
	}
	handler := handlers.NewGamificationHandler(svc)
	req := handlers.WithUser(httptest.NewRequest("GET", "/gamification/my-achievements", nil), handlers.NewTestUser("u1"))

	w := httptest.NewRecorder()
	handler.MyAchievements(w, req)

	var resp struct {
		Unlocked []models.UserAchievement `json:"unlocked"`
		Total    int                      `json:"total"`
	}
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, 42, resp.Total)
	assert.Len(t, resp.Unlocked, 1)
}

func TestAchievements_EmptyListIsArray(t *testing.T) {
	handler := handlers.NewGamificationHandler(&handlers.MockGamificationService{})

	w := httptest.NewRecorder()
	handler.Achievements(w, httptest.NewRequest("GET", "/gamification/achievements", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestMyRank(t *testing.T) {
	handler := handlers.NewGamificationHandler(&handlers.MockGamificationService{})
	user := handlers.NewTestUser("u1")
	user.XP = 250
	req := handlers.WithUser(httptest.NewRequest("GET", "/gamification/my-rank", nil), user)

	w := httptest.NewRecorder()
	handler.MyRank(w, req)

	var resp models.Rank
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, 250, resp.XP)
	assert.Equal(t, "u1", resp.Username)
}

func TestCreateGuild(t *testing.T) {
	svc := &handlers.MockGamificationService{
		CreateGuildFunc: func(ctx context.Context, ownerID, name, description, icon string) (*models.Guild, error) {
			assert.Equal(t, "u1", ownerID)
			assert.Equal(t, "Night Owls", name)
			return &models.Guild{ID: "g1", Name: name}, nil
		},
	}
	handler := handlers.NewGamificationHandler(svc)
	req := handlers.NewTestRequest(t, "POST", "/gamification/guilds", handlers.CreateGuildRequest{Name: "Night Owls"})
	req = handlers.WithUser(req, handlers.NewTestUser("u1"))

	w := httptest.NewRecorder()
	handler.CreateGuild(w, req)

	var resp map[string]interface{}
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "g1", resp["guild_id"])
}

func TestCreateGuild_RequiresName(t *testing.T) {
	handler := handlers.NewGamificationHandler(&handlers.MockGamificationService{})
	req := handlers.WithUser(httptest.NewRequest("POST", "/gamification/guilds", nil), handlers.NewTestUser("u1"))

	w := httptest.NewRecorder()
	handler.CreateGuild(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request", "")
}

func TestJoinGuild(t *testing.T) {
	tests := []struct {
		name    string
		joined  bool
		err     error
		status  int
		message string
	}{
		{"joined", true, nil, http.StatusOK, "Joined guild"},
		{"already member", false, nil, http.StatusOK, "Already a member"},
		{"missing guild", false, models.ErrGuildNotFound, http.StatusNotFound, "Guild not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &handlers.MockGamificationService{
				JoinGuildFunc: func(ctx context.Context, guildID, userID string) (bool, error) {
					assert.Equal(t, "g1", guildID)
					return tt.joined, tt.err
				},
			}
			handler := handlers.NewGamificationHandler(svc)
			req := httptest.NewRequest("POST", "/gamification/guilds/g1/join", nil)
			req = handlers.WithChiRouteContext(req, map[string]string{"guild_id": "g1"})
			req = handlers.WithUser(req, handlers.NewTestUser("u1"))

			w := httptest.NewRecorder()
			handler.JoinGuild(w, req)

			if tt.err != nil {
				handlers.AssertErrorResponse(t, w, tt.status, "not_found", tt.message)
				return
			}
			var resp map[string]interface{}
			handlers.AssertJSONResponse(t, w, tt.status, &resp)
			assert.Equal(t, tt.message, resp["message"])
		})
	}
}
