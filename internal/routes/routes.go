package routes

import (
	"net/http"

	"github.com/Hayacku/initium/internal/auth"
	"github.com/Hayacku/initium/internal/handlers"
	"github.com/Hayacku/initium/internal/middleware"
	pkghttp "github.com/Hayacku/initium/pkg/http"
	"github.com/go-chi/chi/v5"
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Auth         *handlers.AuthHandler
	OAuth        *handlers.OAuthHandler
	Gamification *handlers.GamificationHandler
	Notes        *handlers.NotesHandler
	Habits       *handlers.HabitsHandler
	Pomodoro     *handlers.PomodoroHandler
	Integrations *handlers.IntegrationsHandler
	Sync         *handlers.SyncHandler
	Health       *handlers.HealthHandler
}

// Options tunes rate limiting and the metrics endpoint. A zero limit
// disables the corresponding limiter; a nil Metrics hides /metrics.
type Options struct {
	IPConfig              *pkghttp.IPConfig
	AuthRequestsPerMinute int
	UserRequestsPerMinute int
	Metrics               *middleware.Metrics
	MetricsPath           string
}

// RegisterRoutes registers all application routes
func RegisterRoutes(router chi.Router, h Handlers, authn *auth.Authenticator, opts Options) {
	router.Get("/health", h.Health.Health)
	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, opts.Metrics.Handler())
	}

	// Sign-in surfaces are limited per client IP
	var signIn []func(http.Handler) http.Handler
	if opts.AuthRequestsPerMinute > 0 {
		signIn = append(signIn, middleware.RateLimitByIP(middleware.RateLimitConfig{
			RequestsPerMinute: opts.AuthRequestsPerMinute,
			IPConfig:          opts.IPConfig,
		}))
	}

	// Public routes - no authentication required
	router.With(signIn...).Post("/auth/register", h.Auth.Register)
	router.With(signIn...).Post("/auth/login", h.Auth.Login)
	router.With(signIn...).Post("/auth/refresh", h.Auth.Refresh)
	router.With(signIn...).Post("/auth/2fa/verify", h.Auth.VerifyTwoFA)

	router.With(signIn...).Post("/oauth/google/verify", h.OAuth.GoogleVerify)
	router.Post("/oauth/google/link", h.OAuth.GoogleLink)
	router.With(signIn...).Get("/oauth/github/login", h.OAuth.GitHubLogin)
	router.With(signIn...).Get("/oauth/github/callback", h.OAuth.GitHubCallback)

	router.Get("/gamification/achievements", h.Gamification.Achievements)
	router.Get("/gamification/leaderboard", h.Gamification.Leaderboard)
	router.Get("/gamification/guilds", h.Gamification.Guilds)
	router.Get("/integrations/available", h.Integrations.Available)

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(authn.AuthMiddleware)
		if opts.UserRequestsPerMinute > 0 {
			r.Use(middleware.RateLimitByUser(middleware.RateLimitConfig{
				RequestsPerMinute: opts.UserRequestsPerMinute,
				IPConfig:          opts.IPConfig,
			}))
		}

		r.Get("/auth/me", h.Auth.Me)
		r.Patch("/auth/me", h.Auth.UpdateMe)
		r.Post("/auth/logout", h.Auth.Logout)

		r.Post("/auth/2fa/setup", h.Auth.SetupTwoFA)
		r.Post("/auth/2fa/enable", h.Auth.EnableTwoFA)
		r.Post("/auth/2fa/disable", h.Auth.DisableTwoFA)

		r.Post("/auth/api-keys", h.Auth.CreateAPIKey)
		r.Get("/auth/api-keys", h.Auth.ListAPIKeys)
		r.Delete("/auth/api-keys/{prefix}", h.Auth.RevokeAPIKey)

		r.Get("/gamification/my-achievements", h.Gamification.MyAchievements)
		r.Get("/gamification/my-rank", h.Gamification.MyRank)
		r.Post("/gamification/guilds", h.Gamification.CreateGuild)
		r.Post("/gamification/guilds/{guild_id}/join", h.Gamification.JoinGuild)

		r.Get("/notes-advanced/backlinks/{note_id}", h.Notes.Backlinks)
		r.Post("/notes-advanced/backlinks", h.Notes.CreateBacklink)
		r.Get("/notes-advanced/templates", h.Notes.Templates)
		r.Post("/notes-advanced/templates", h.Notes.CreateTemplate)

		r.Post("/habits-advanced/mood", h.Habits.LogMood)
		r.Get("/habits-advanced/mood", h.Habits.MoodHistory)
		r.Post("/habits-advanced/metrics", h.Habits.LogMetric)
		r.Get("/habits-advanced/metrics/{habit_id}", h.Habits.Metrics)

		r.Post("/pomodoro/start", h.Pomodoro.Start)
		r.Post("/pomodoro/complete/{session_id}", h.Pomodoro.Complete)
		r.Get("/pomodoro/stats", h.Pomodoro.Stats)

		r.Post("/integrations/webhooks", h.Integrations.CreateWebhook)
		r.Get("/integrations/webhooks", h.Integrations.Webhooks)
		r.Delete("/integrations/webhooks/{webhook_id}", h.Integrations.DeleteWebhook)
		r.Post("/integrations/connect/{provider}", h.Integrations.Connect)
		r.Get("/integrations/connected", h.Integrations.Connected)

		r.Post("/sync/push", h.Sync.Push)
		r.Get("/sync/pull", h.Sync.Pull)
		r.Post("/sync/migrate", h.Sync.Migrate)
		r.Delete("/sync/clear", h.Sync.Clear)
	})
}
