package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Hayacku/initium/internal/auth"
	"github.com/Hayacku/initium/internal/background"
	"github.com/Hayacku/initium/internal/cache"
	"github.com/Hayacku/initium/internal/catalog"
	"github.com/Hayacku/initium/internal/config"
	"github.com/Hayacku/initium/internal/database"
	"github.com/Hayacku/initium/internal/handlers"
	middlewareCustom "github.com/Hayacku/initium/internal/middleware"
	"github.com/Hayacku/initium/internal/oauth"
	"github.com/Hayacku/initium/internal/repositories"
	"github.com/Hayacku/initium/internal/routes"
	"github.com/Hayacku/initium/internal/services"
	pkghttp "github.com/Hayacku/initium/pkg/http"
	pkglogger "github.com/Hayacku/initium/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 30 * time.Second
)

func newServeCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			return serve(cmd.Context(), cfg, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, migrate bool) error {
	logger := newLogger(cfg.Server.LogLevel)
	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	startCtx, cancelStart := context.WithTimeout(ctx, startupTimeout)
	defer cancelStart()

	// Initialize database
	db, err := database.NewConnection(startCtx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	logger.Info("database connected", pkglogger.RedactedAttr("db_host", cfg.Database.Host, cfg.Server.Env))

	if migrate {
		if err := db.Migrate(startCtx, database.MigrateUp, nil); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("migrations applied")
	}

	cacheClient, err := cache.New(startCtx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer cacheClient.Close()

	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("load catalogue: %w", err)
	}

	var (
		metrics *middlewareCustom.Metrics
		events  services.AuthEventRecorder
	)
	if cfg.Metrics.Enabled {
		metrics = middlewareCustom.NewMetrics()
		if err := metrics.RegisterPool(db.Pool); err != nil {
			return fmt.Errorf("register pool metrics: %w", err)
		}
		events = metrics
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshRepo := repositories.NewRefreshTokenRepository(db)
	oauthRepo := repositories.NewOAuthAccountRepository(db)
	apiKeyRepo := repositories.NewAPIKeyRepository(db)
	achievementRepo := repositories.NewAchievementRepository(db)
	guildRepo := repositories.NewGuildRepository(db)
	notesRepo := repositories.NewNotesRepository(db)
	habitsRepo := repositories.NewHabitsRepository(db)
	pomodoroRepo := repositories.NewPomodoroRepository(db)
	integrationsRepo := repositories.NewIntegrationsRepository(db)
	syncRepo := repositories.NewSyncRepository(db)

	// Credentials
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry, cfg.Auth.RefreshTokenExpiry)
	keyManager := auth.NewAPIKeyManager(cfg.Auth.BcryptCost)
	sessions := services.NewSessionIssuer(tokenManager, refreshRepo)
	auditLogger := pkglogger.NewAuditLogger(logger)

	mailer, err := newMailer(startCtx, cfg, logger)
	if err != nil {
		return err
	}

	authService := services.NewAuthService(services.AuthServiceDeps{
		Users:      userRepo,
		Sessions:   sessions,
		Refresh:    refreshRepo,
		APIKeys:    apiKeyRepo,
		Tokens:     tokenManager,
		TOTP:       auth.NewTOTPManager(cfg.Auth.TOTPIssuer),
		Keys:       keyManager,
		Delay:      auth.NewFailureDelay(cfg.Auth.FailureDelay, cfg.Auth.FailureDelay/2),
		Mailer:     mailer,
		Events:     events,
		Logger:     logger,
		Audit:      auditLogger,
		BcryptCost: cfg.Auth.BcryptCost,
	})

	oauthDeps := services.OAuthServiceDeps{
		Users:       userRepo,
		Accounts:    oauthRepo,
		Sessions:    sessions,
		FrontendURL: cfg.Server.FrontendURL,
		Events:      events,
		Logger:      logger,
		Audit:       auditLogger,
	}
	if cfg.OAuth.GoogleEnabled() {
		oauthDeps.Google = oauth.NewGoogleVerifier(oauth.GoogleConfig{
			ClientID:  cfg.OAuth.GoogleClientID,
			ProjectID: cfg.OAuth.FirebaseProjectID,
			JWKSURL:   cfg.OAuth.GoogleJWKSURL,
		})
	}
	if cfg.OAuth.GitHubEnabled() {
		oauthDeps.GitHub = oauth.NewGitHubClient(oauth.GitHubConfig{
			ClientID:     cfg.OAuth.GitHubClientID,
			ClientSecret: cfg.OAuth.GitHubClientSecret,
			RedirectURL:  cfg.GitHubRedirectURL(),
		})
	}
	oauthService := services.NewOAuthService(oauthDeps)

	gamificationService := services.NewGamificationService(achievementRepo, userRepo, guildRepo,
		cat.Achievements, cacheClient, cfg.Cache.LeaderboardTTL, logger)
	if err := gamificationService.SeedAchievements(startCtx); err != nil {
		return fmt.Errorf("seed achievements: %w", err)
	}

	notesService := services.NewNotesService(notesRepo, cat.Templates, logger)
	habitsService := services.NewHabitsService(habitsRepo, logger)
	pomodoroService := services.NewPomodoroService(pomodoroRepo, gamificationService, logger)
	integrationsService := services.NewIntegrationsService(integrationsRepo, cat, cat.Integrations, logger)
	syncService := services.NewSyncService(syncRepo, logger)

	// Initialize handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	h := routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService, ipConfig),
		OAuth:        handlers.NewOAuthHandler(oauthService, ipConfig),
		Gamification: handlers.NewGamificationHandler(gamificationService),
		Notes:        handlers.NewNotesHandler(notesService),
		Habits:       handlers.NewHabitsHandler(habitsService),
		Pomodoro:     handlers.NewPomodoroHandler(pomodoroService),
		Integrations: handlers.NewIntegrationsHandler(integrationsService),
		Sync:         handlers.NewSyncHandler(syncService),
		Health:       handlers.NewHealthHandler(db, cacheClient),
	}
	authn := auth.NewAuthenticator(tokenManager, keyManager, userRepo, apiKeyRepo, logger)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	if metrics != nil {
		router.Use(metrics.Middleware)
	}
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// Register routes
	routes.RegisterRoutes(router, h, authn, routes.Options{
		IPConfig:              ipConfig,
		AuthRequestsPerMinute: cfg.Server.AuthRateLimit,
		UserRequestsPerMinute: cfg.Server.UserRateLimit,
		Metrics:               metrics,
		MetricsPath:           cfg.Metrics.Path,
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupManager := background.NewCleanupManager(refreshRepo, logger, cfg.Auth.CleanupInterval)
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go cleanupManager.Start(cleanupCtx)

	// Start server
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-serverErr:
		cleanupManager.Stop()
		return fmt.Errorf("server error: %w", err)
	case <-sigChan:
		logger.Info("shutdown signal received")
	}

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

// newMailer returns the SES mailer when email is enabled, otherwise a mailer
// that only logs.
func newMailer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (services.Mailer, error) {
	if !cfg.Email.Enabled {
		return services.NewLogMailer(logger), nil
	}
	mailer, err := services.NewSESMailer(ctx, cfg.Email.AWSRegion, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Server.FrontendURL, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize email service: %w", err)
	}
	return mailer, nil
}
