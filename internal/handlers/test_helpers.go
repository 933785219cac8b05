package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Hayacku/initium/internal/auth"
	"github.com/Hayacku/initium/internal/models"
	pkghttp "github.com/Hayacku/initium/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewTestUser returns an active account for authenticated handler tests
func NewTestUser(id string) *models.User {
	return &models.User{
		ID:            id,
		Email:         id + "@example.com",
		Username:      id,
		IsActive:      true,
		Level:         1,
		XPToNextLevel: 100,
		CreatedAt:     time.Now(),
	}
}

// WithUser puts user on the request context as AuthMiddleware would
func WithUser(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(auth.WithCurrentUser(req.Context(), user))
}

// WithChiRouteContext sets URL parameters normally extracted by the router
func WithChiRouteContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks the status, error code and message of an error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError, expectedMessage string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	if expectedMessage != "" {
		assert.Equal(t, expectedMessage, resp.Message, "Error message mismatch")
	} else {
		assert.NotEmpty(t, resp.Message, "Error message should not be empty")
	}
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	RegisterFunc      func(ctx context.Context, email, username, password, ip string) (*models.User, error)
	LoginFunc         func(ctx context.Context, email, password, ip string) (*models.TokenPair, error)
	RefreshFunc       func(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	LogoutFunc        func(ctx context.Context, userID, refreshToken, ip string) error
	UpdateProfileFunc func(ctx context.Context, userID string, upd models.UserUpdate, ip string) (*models.User, error)
	SetupTwoFAFunc    func(user *models.User) (*models.TwoFASetup, error)
	EnableTwoFAFunc   func(ctx context.Context, user *models.User, code, secret, ip string) error
	DisableTwoFAFunc  func(ctx context.Context, user *models.User, code, ip string) error
	VerifyTwoFAFunc   func(ctx context.Context, userID, code, ip string) (*models.TokenPair, error)
	CreateAPIKeyFunc  func(ctx context.Context, userID, name, ip string) (*models.APIKeyResponse, error)
	ListAPIKeysFunc   func(ctx context.Context, userID string) ([]models.APIKeyInfo, error)
	RevokeAPIKeyFunc  func(ctx context.Context, userID, prefix, ip string) error
}

func (m *MockAuthService) Register(ctx context.Context, email, username, password, ip string) (*models.User, error) {
	if m.RegisterFunc == nil {
		return nil, models.ErrEmailTaken
	}
	return m.RegisterFunc(ctx, email, username, password, ip)
}

func (m *MockAuthService) Login(ctx context.Context, email, password, ip string) (*models.TokenPair, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrInvalidCredentials
	}
	return m.LoginFunc(ctx, email, password, ip)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	if m.RefreshFunc == nil {
		return nil, models.ErrInvalidRefresh
	}
	return m.RefreshFunc(ctx, refreshToken)
}

func (m *MockAuthService) Logout(ctx context.Context, userID, refreshToken, ip string) error {
	if m.LogoutFunc == nil {
		return nil
	}
	return m.LogoutFunc(ctx, userID, refreshToken, ip)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID string, upd models.UserUpdate, ip string) (*models.User, error) {
	if m.UpdateProfileFunc == nil {
		return nil, models.ErrUserNotFound
	}
	return m.UpdateProfileFunc(ctx, userID, upd, ip)
}

func (m *MockAuthService) SetupTwoFA(user *models.User) (*models.TwoFASetup, error) {
	if m.SetupTwoFAFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.SetupTwoFAFunc(user)
}

func (m *MockAuthService) EnableTwoFA(ctx context.Context, user *models.User, code, secret, ip string) error {
	if m.EnableTwoFAFunc == nil {
		return models.ErrInvalidTOTPCode
	}
	return m.EnableTwoFAFunc(ctx, user, code, secret, ip)
}

func (m *MockAuthService) DisableTwoFA(ctx context.Context, user *models.User, code, ip string) error {
	if m.DisableTwoFAFunc == nil {
		return models.ErrTwoFANotEnabled
	}
	return m.DisableTwoFAFunc(ctx, user, code, ip)
}

func (m *MockAuthService) VerifyTwoFA(ctx context.Context, userID, code, ip string) (*models.TokenPair, error) {
	if m.VerifyTwoFAFunc == nil {
		return nil, models.ErrInvalidLoginCode
	}
	return m.VerifyTwoFAFunc(ctx, userID, code, ip)
}

func (m *MockAuthService) CreateAPIKey(ctx context.Context, userID, name, ip string) (*models.APIKeyResponse, error) {
	if m.CreateAPIKeyFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CreateAPIKeyFunc(ctx, userID, name, ip)
}

func (m *MockAuthService) ListAPIKeys(ctx context.Context, userID string) ([]models.APIKeyInfo, error) {
	if m.ListAPIKeysFunc == nil {
		return []models.APIKeyInfo{}, nil
	}
	return m.ListAPIKeysFunc(ctx, userID)
}

func (m *MockAuthService) RevokeAPIKey(ctx context.Context, userID, prefix, ip string) error {
	if m.RevokeAPIKeyFunc == nil {
		return nil
	}
	return m.RevokeAPIKeyFunc(ctx, userID, prefix, ip)
}

// MockOAuthService implements OAuthServiceInterface for testing
type MockOAuthService struct {
	GoogleSignInFunc   func(ctx context.Context, idToken, ip string) (*models.TokenPair, error)
	GitHubLoginURLFunc func() (string, error)
	GitHubCallbackFunc func(ctx context.Context, code, ip string) (string, error)
}

func (m *MockOAuthService) GoogleSignIn(ctx context.Context, idToken, ip string) (*models.TokenPair, error) {
	if m.GoogleSignInFunc == nil {
		return nil, models.ErrGoogleNotConfigured
	}
	return m.GoogleSignInFunc(ctx, idToken, ip)
}

func (m *MockOAuthService) GitHubLoginURL() (string, error) {
	if m.GitHubLoginURLFunc == nil {
		return "", models.ErrGitHubNotConfigured
	}
	return m.GitHubLoginURLFunc()
}

func (m *MockOAuthService) GitHubCallback(ctx context.Context, code, ip string) (string, error) {
	if m.GitHubCallbackFunc == nil {
		return "", models.ErrGitHubNotConfigured
	}
	return m.GitHubCallbackFunc(ctx, code, ip)
}

// MockGamificationService implements GamificationServiceInterface for testing
type MockGamificationService struct {
	AchievementsFunc     func(ctx context.Context) ([]*models.Achievement, error)
	UserAchievementsFunc func(ctx context.Context, userID string) ([]*models.UserAchievement, int, error)
	LeaderboardFunc      func(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	MyRankFunc           func(ctx context.Context, user *models.User) (*models.Rank, error)
	CreateGuildFunc      func(ctx context.Context, ownerID, name, description, icon string) (*models.Guild, error)
	GuildsFunc           func(ctx context.Context) ([]*models.Guild, error)
	JoinGuildFunc        func(ctx context.Context, guildID, userID string) (bool, error)
}

func (m *MockGamificationService) Achievements(ctx context.Context) ([]*models.Achievement, error) {
	if m.AchievementsFunc == nil {
		return nil, nil
	}
	return m.AchievementsFunc(ctx)
}

func (m *MockGamificationService) UserAchievements(ctx context.Context, userID string) ([]*models.UserAchievement, int, error) {
	if m.UserAchievementsFunc == nil {
		return nil, 0, nil
	}
	return m.UserAchievementsFunc(ctx, userID)
}

func (m *MockGamificationService) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if m.LeaderboardFunc == nil {
		return []models.LeaderboardEntry{}, nil
	}
	return m.LeaderboardFunc(ctx, limit)
}

func (m *MockGamificationService) MyRank(ctx context.Context, user *models.User) (*models.Rank, error) {
	if m.MyRankFunc == nil {
		return &models.Rank{Rank: 1, Username: user.Username, XP: user.XP, Level: user.Level}, nil
	}
	return m.MyRankFunc(ctx, user)
}

func (m *MockGamificationService) CreateGuild(ctx context.Context, ownerID, name, description, icon string) (*models.Guild, error) {
	if m.CreateGuildFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CreateGuildFunc(ctx, ownerID, name, description, icon)
}

func (m *MockGamificationService) Guilds(ctx context.Context) ([]*models.Guild, error) {
	if m.GuildsFunc == nil {
		return nil, nil
	}
	return m.GuildsFunc(ctx)
}

func (m *MockGamificationService) JoinGuild(ctx context.Context, guildID, userID string) (bool, error) {
	if m.JoinGuildFunc == nil {
		return false, models.ErrGuildNotFound
	}
	return m.JoinGuildFunc(ctx, guildID, userID)
}

// MockNotesService implements NotesServiceInterface for testing
type MockNotesService struct {
	BacklinksFunc      func(ctx context.Context, userID, noteID string) ([]*models.Backlink, error)
	CreateBacklinkFunc func(ctx context.Context, userID, sourceID, targetID string) (*models.Backlink, bool, error)
	TemplatesFunc      func(ctx context.Context, userID string) ([]models.NoteTemplate, []*models.NoteTemplate, error)
	CreateTemplateFunc func(ctx context.Context, userID, name, content, category string) (*models.NoteTemplate, error)
}

func (m *MockNotesService) Backlinks(ctx context.Context, userID, noteID string) ([]*models.Backlink, error) {
	if m.BacklinksFunc == nil {
		return nil, nil
	}
	return m.BacklinksFunc(ctx, userID, noteID)
}

func (m *MockNotesService) CreateBacklink(ctx context.Context, userID, sourceID, targetID string) (*models.Backlink, bool, error) {
	if m.CreateBacklinkFunc == nil {
		return nil, false, models.ErrInternalServer
	}
	return m.CreateBacklinkFunc(ctx, userID, sourceID, targetID)
}

func (m *MockNotesService) Templates(ctx context.Context, userID string) ([]models.NoteTemplate, []*models.NoteTemplate, error) {
	if m.TemplatesFunc == nil {
		return nil, nil, nil
	}
	return m.TemplatesFunc(ctx, userID)
}

func (m *MockNotesService) CreateTemplate(ctx context.Context, userID, name, content, category string) (*models.NoteTemplate, error) {
	if m.CreateTemplateFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CreateTemplateFunc(ctx, userID, name, content, category)
}

// MockHabitsService implements HabitsServiceInterface for testing
type MockHabitsService struct {
	LogMoodFunc     func(ctx context.Context, entry *models.MoodEntry) error
	MoodHistoryFunc func(ctx context.Context, userID string, days int) ([]*models.MoodEntry, error)
	LogMetricFunc   func(ctx context.Context, metric *models.HabitMetric) error
	MetricsFunc     func(ctx context.Context, userID, habitID string) ([]*models.HabitMetric, error)
}

func (m *MockHabitsService) LogMood(ctx context.Context, entry *models.MoodEntry) error {
	if m.LogMoodFunc == nil {
		return models.ErrInternalServer
	}
	return m.LogMoodFunc(ctx, entry)
}

func (m *MockHabitsService) MoodHistory(ctx context.Context, userID string, days int) ([]*models.MoodEntry, error) {
	if m.MoodHistoryFunc == nil {
		return nil, nil
	}
	return m.MoodHistoryFunc(ctx, userID, days)
}

func (m *MockHabitsService) LogMetric(ctx context.Context, metric *models.HabitMetric) error {
	if m.LogMetricFunc == nil {
		return models.ErrInternalServer
	}
	return m.LogMetricFunc(ctx, metric)
}

func (m *MockHabitsService) Metrics(ctx context.Context, userID, habitID string) ([]*models.HabitMetric, error) {
	if m.MetricsFunc == nil {
		return nil, nil
	}
	return m.MetricsFunc(ctx, userID, habitID)
}

// MockPomodoroService implements PomodoroServiceInterface for testing
type MockPomodoroService struct {
	StartFunc    func(ctx context.Context, userID string, duration int, taskID *string, sessionType string) (*models.PomodoroSession, error)
	CompleteFunc func(ctx context.Context, userID, sessionID string) (int, error)
	StatsFunc    func(ctx context.Context, userID string) (*models.PomodoroStats, error)
}

func (m *MockPomodoroService) Start(ctx context.Context, userID string, duration int, taskID *string, sessionType string) (*models.PomodoroSession, error) {
	if m.StartFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.StartFunc(ctx, userID, duration, taskID, sessionType)
}

func (m *MockPomodoroService) Complete(ctx context.Context, userID, sessionID string) (int, error) {
	if m.CompleteFunc == nil {
		return 0, models.ErrSessionNotFound
	}
	return m.CompleteFunc(ctx, userID, sessionID)
}

func (m *MockPomodoroService) Stats(ctx context.Context, userID string) (*models.PomodoroStats, error) {
	if m.StatsFunc == nil {
		return &models.PomodoroStats{}, nil
	}
	return m.StatsFunc(ctx, userID)
}

// MockIntegrationsService implements IntegrationsServiceInterface for testing
type MockIntegrationsService struct {
	CreateWebhookFunc func(ctx context.Context, w *models.Webhook) error
	WebhooksFunc      func(ctx context.Context, userID string) ([]*models.Webhook, error)
	DeleteWebhookFunc func(ctx context.Context, userID, id string) error
	AvailableList     []models.AvailableIntegration
	ConnectFunc       func(ctx context.Context, userID, provider string) (*models.Integration, error)
	ConnectedFunc     func(ctx context.Context, userID string) ([]*models.Integration, error)
}

func (m *MockIntegrationsService) CreateWebhook(ctx context.Context, w *models.Webhook) error {
	if m.CreateWebhookFunc == nil {
		return models.ErrInternalServer
	}
	return m.CreateWebhookFunc(ctx, w)
}

func (m *MockIntegrationsService) Webhooks(ctx context.Context, userID string) ([]*models.Webhook, error) {
	if m.WebhooksFunc == nil {
		return nil, nil
	}
	return m.WebhooksFunc(ctx, userID)
}

func (m *MockIntegrationsService) DeleteWebhook(ctx context.Context, userID, id string) error {
	if m.DeleteWebhookFunc == nil {
		return models.ErrWebhookNotFound
	}
	return m.DeleteWebhookFunc(ctx, userID, id)
}

func (m *MockIntegrationsService) Available() []models.AvailableIntegration {
	return m.AvailableList
}

func (m *MockIntegrationsService) Connect(ctx context.Context, userID, provider string) (*models.Integration, error) {
	if m.ConnectFunc == nil {
		return nil, models.ErrUnknownProvider
	}
	return m.ConnectFunc(ctx, userID, provider)
}

func (m *MockIntegrationsService) Connected(ctx context.Context, userID string) ([]*models.Integration, error) {
	if m.ConnectedFunc == nil {
		return nil, nil
	}
	return m.ConnectedFunc(ctx, userID)
}

// MockSyncService implements SyncServiceInterface for testing
type MockSyncService struct {
	PushFunc    func(ctx context.Context, userID, collection string, docs []models.Document) (int, error)
	PullFunc    func(ctx context.Context, userID string, collections []string) (*models.PullResult, error)
	MigrateFunc func(ctx context.Context, userID string, all map[string][]models.Document) (int, map[string]models.SyncResult, error)
	ClearFunc   func(ctx context.Context, userID string, collections []string) (map[string]int64, error)
}

func (m *MockSyncService) Push(ctx context.Context, userID, collection string, docs []models.Document) (int, error) {
	if m.PushFunc == nil {
		return len(docs), nil
	}
	return m.PushFunc(ctx, userID, collection, docs)
}

func (m *MockSyncService) Pull(ctx context.Context, userID string, collections []string) (*models.PullResult, error) {
	if m.PullFunc == nil {
		return &models.PullResult{Data: map[string][]models.Document{}}, nil
	}
	return m.PullFunc(ctx, userID, collections)
}

func (m *MockSyncService) Migrate(ctx context.Context, userID string, all map[string][]models.Document) (int, map[string]models.SyncResult, error) {
	if m.MigrateFunc == nil {
		return 0, map[string]models.SyncResult{}, nil
	}
	return m.MigrateFunc(ctx, userID, all)
}

func (m *MockSyncService) Clear(ctx context.Context, userID string, collections []string) (map[string]int64, error) {
	if m.ClearFunc == nil {
		return map[string]int64{}, nil
	}
	return m.ClearFunc(ctx, userID, collections)
}
