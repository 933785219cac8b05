package services

import (
	"context"
	"time"

	"github.com/Hayacku/initium/internal/models"
	"github.com/Hayacku/initium/internal/oauth"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc          func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc       func(ctx context.Context, email string) (*models.User, error)
	GetByUsernameFunc    func(ctx context.Context, username string) (*models.User, error)
	CreateFunc           func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFunc           func(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
	SetTwoFAFunc         func(ctx context.Context, id string, enabled bool, secret *string) error
	AddOAuthProviderFunc func(ctx context.Context, id, provider string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	user.ID = "new-user"
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	return user, nil
}

func (m *MockUserRepository) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, upd)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) SetTwoFA(ctx context.Context, id string, enabled bool, secret *string) error {
	if m.SetTwoFAFunc != nil {
		return m.SetTwoFAFunc(ctx, id, enabled, secret)
	}
	return nil
}

func (m *MockUserRepository) AddOAuthProvider(ctx context.Context, id, provider string) error {
	if m.AddOAuthProviderFunc != nil {
		return m.AddOAuthProviderFunc(ctx, id, provider)
	}
	return nil
}

// MockRefreshTokenRepository implements RefreshTokenRepository for testing
type MockRefreshTokenRepository struct {
	CreateFunc    func(ctx context.Context, token *models.RefreshToken) error
	GetActiveFunc func(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeFunc    func(ctx context.Context, token, userID string) error
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, token)
	}
	return nil
}

func (m *MockRefreshTokenRepository) GetActive(ctx context.Context, token string) (*models.RefreshToken, error) {
	if m.GetActiveFunc != nil {
		return m.GetActiveFunc(ctx, token)
	}
	return nil, models.ErrNotFound
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, token, userID string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, token, userID)
	}
	return nil
}

// MockAPIKeyRepository implements APIKeyRepository for testing
type MockAPIKeyRepository struct {
	CreateFunc         func(ctx context.Context, key *models.APIKey) error
	ListByUserFunc     func(ctx context.Context, userID string) ([]*models.APIKey, error)
	DeleteByPrefixFunc func(ctx context.Context, userID, prefix string) error
}

func (m *MockAPIKeyRepository) Create(ctx context.Context, key *models.APIKey) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, key)
	}
	key.ID = "key-1"
	key.CreatedAt = time.Now()
	return nil
}

func (m *MockAPIKeyRepository) ListByUser(ctx context.Context, userID string) ([]*models.APIKey, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return []*models.APIKey{}, nil
}

func (m *MockAPIKeyRepository) DeleteByPrefix(ctx context.Context, userID, prefix string) error {
	if m.DeleteByPrefixFunc != nil {
		return m.DeleteByPrefixFunc(ctx, userID, prefix)
	}
	return nil
}

// MockOAuthAccountRepository implements OAuthAccountRepository for testing
type MockOAuthAccountRepository struct {
	GetByProviderIDFunc func(ctx context.Context, provider, providerUserID string) (*models.OAuthAccount, error)
	CreateFunc          func(ctx context.Context, account *models.OAuthAccount) error
	UpdateTokensFunc    func(ctx context.Context, id, accessToken, refreshToken string) error
}

func (m *MockOAuthAccountRepository) GetByProviderID(ctx context.Context, provider, providerUserID string) (*models.OAuthAccount, error) {
	if m.GetByProviderIDFunc != nil {
		return m.GetByProviderIDFunc(ctx, provider, providerUserID)
	}
	return nil, models.ErrNotFound
}

func (m *MockOAuthAccountRepository) Create(ctx context.Context, account *models.OAuthAccount) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	return nil
}

func (m *MockOAuthAccountRepository) UpdateTokens(ctx context.Context, id, accessToken, refreshToken string) error {
	if m.UpdateTokensFunc != nil {
		return m.UpdateTokensFunc(ctx, id, accessToken, refreshToken)
	}
	return nil
}

// MockAchievementRepository implements AchievementRepository for testing
type MockAchievementRepository struct {
	SeedIfEmptyFunc  func(ctx context.Context, achievements []models.Achievement) (int, error)
	ListFunc         func(ctx context.Context) ([]*models.Achievement, error)
	ListUnlockedFunc func(ctx context.Context, userID string) ([]*models.UserAchievement, error)
}

func (m *MockAchievementRepository) SeedIfEmpty(ctx context.Context, achievements []models.Achievement) (int, error) {
	if m.SeedIfEmptyFunc != nil {
		return m.SeedIfEmptyFunc(ctx, achievements)
	}
	return 0, nil
}

func (m *MockAchievementRepository) List(ctx context.Context) ([]*models.Achievement, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Achievement{}, nil
}

func (m *MockAchievementRepository) ListUnlocked(ctx context.Context, userID string) ([]*models.UserAchievement, error) {
	if m.ListUnlockedFunc != nil {
		return m.ListUnlockedFunc(ctx, userID)
	}
	return []*models.UserAchievement{}, nil
}

// MockLeaderboardRepository implements LeaderboardRepository for testing
type MockLeaderboardRepository struct {
	LeaderboardFunc     func(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	CountWithMoreXPFunc func(ctx context.Context, xp int) (int, error)
}

func (m *MockLeaderboardRepository) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(ctx, limit)
	}
	return []models.LeaderboardEntry{}, nil
}

func (m *MockLeaderboardRepository) CountWithMoreXP(ctx context.Context, xp int) (int, error) {
	if m.CountWithMoreXPFunc != nil {
		return m.CountWithMoreXPFunc(ctx, xp)
	}
	return 0, nil
}

// MockGuildRepository implements GuildRepository for testing
type MockGuildRepository struct {
	CreateFunc    func(ctx context.Context, guild *models.Guild) error
	ListFunc      func(ctx context.Context, limit int) ([]*models.Guild, error)
	GetByIDFunc   func(ctx context.Context, id string) (*models.Guild, error)
	AddMemberFunc func(ctx context.Context, id, userID string) (bool, error)
}

func (m *MockGuildRepository) Create(ctx context.Context, guild *models.Guild) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, guild)
	}
	guild.ID = "guild-1"
	return nil
}

func (m *MockGuildRepository) List(ctx context.Context, limit int) ([]*models.Guild, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit)
	}
	return []*models.Guild{}, nil
}

func (m *MockGuildRepository) GetByID(ctx context.Context, id string) (*models.Guild, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockGuildRepository) AddMember(ctx context.Context, id, userID string) (bool, error) {
	if m.AddMemberFunc != nil {
		return m.AddMemberFunc(ctx, id, userID)
	}
	return true, nil
}

// MockNotesRepository implements NotesRepository for testing
type MockNotesRepository struct {
	BacklinksToFunc    func(ctx context.Context, userID, targetID string) ([]*models.Backlink, error)
	CreateBacklinkFunc func(ctx context.Context, b *models.Backlink) error
	ListTemplatesFunc  func(ctx context.Context, userID string) ([]*models.NoteTemplate, error)
	CreateTemplateFunc func(ctx context.Context, t *models.NoteTemplate) error
}

func (m *MockNotesRepository) BacklinksTo(ctx context.Context, userID, targetID string) ([]*models.Backlink, error) {
	if m.BacklinksToFunc != nil {
		return m.BacklinksToFunc(ctx, userID, targetID)
	}
	return []*models.Backlink{}, nil
}

func (m *MockNotesRepository) CreateBacklink(ctx context.Context, b *models.Backlink) error {
	if m.CreateBacklinkFunc != nil {
		return m.CreateBacklinkFunc(ctx, b)
	}
	b.ID = "backlink-1"
	return nil
}

func (m *MockNotesRepository) ListTemplates(ctx context.Context, userID string) ([]*models.NoteTemplate, error) {
	if m.ListTemplatesFunc != nil {
		return m.ListTemplatesFunc(ctx, userID)
	}
	return []*models.NoteTemplate{}, nil
}

func (m *MockNotesRepository) CreateTemplate(ctx context.Context, t *models.NoteTemplate) error {
	if m.CreateTemplateFunc != nil {
		return m.CreateTemplateFunc(ctx, t)
	}
	t.ID = "template-1"
	return nil
}

// MockHabitsRepository implements HabitsRepository for testing
type MockHabitsRepository struct {
	CreateMoodFunc   func(ctx context.Context, m *models.MoodEntry) error
	ListMoodsFunc    func(ctx context.Context, userID string, limit int) ([]*models.MoodEntry, error)
	CreateMetricFunc func(ctx context.Context, m *models.HabitMetric) error
	ListMetricsFunc  func(ctx context.Context, userID, habitID string, limit int) ([]*models.HabitMetric, error)
}

func (m *MockHabitsRepository) CreateMood(ctx context.Context, e *models.MoodEntry) error {
	if m.CreateMoodFunc != nil {
		return m.CreateMoodFunc(ctx, e)
	}
	e.ID = "mood-1"
	return nil
}

func (m *MockHabitsRepository) ListMoods(ctx context.Context, userID string, limit int) ([]*models.MoodEntry, error) {
	if m.ListMoodsFunc != nil {
		return m.ListMoodsFunc(ctx, userID, limit)
	}
	return []*models.MoodEntry{}, nil
}

func (m *MockHabitsRepository) CreateMetric(ctx context.Context, e *models.HabitMetric) error {
	if m.CreateMetricFunc != nil {
		return m.CreateMetricFunc(ctx, e)
	}
	e.ID = "metric-1"
	return nil
}

func (m *MockHabitsRepository) ListMetrics(ctx context.Context, userID, habitID string, limit int) ([]*models.HabitMetric, error) {
	if m.ListMetricsFunc != nil {
		return m.ListMetricsFunc(ctx, userID, habitID, limit)
	}
	return []*models.HabitMetric{}, nil
}

// MockPomodoroRepository implements PomodoroRepository for testing
type MockPomodoroRepository struct {
	CreateFunc   func(ctx context.Context, s *models.PomodoroSession) error
	CompleteFunc func(ctx context.Context, userID, sessionID string, xp int) error
	StatsFunc    func(ctx context.Context, userID string) (int, int, error)
}

func (m *MockPomodoroRepository) Create(ctx context.Context, s *models.PomodoroSession) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, s)
	}
	s.ID = "session-1"
	return nil
}

func (m *MockPomodoroRepository) Complete(ctx context.Context, userID, sessionID string, xp int) error {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, userID, sessionID, xp)
	}
	return nil
}

func (m *MockPomodoroRepository) Stats(ctx context.Context, userID string) (int, int, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, userID)
	}
	return 0, 0, nil
}

// MockIntegrationsRepository implements IntegrationsRepository for testing
type MockIntegrationsRepository struct {
	CreateWebhookFunc     func(ctx context.Context, w *models.Webhook) error
	ListWebhooksFunc      func(ctx context.Context, userID string) ([]*models.Webhook, error)
	DeleteWebhookFunc     func(ctx context.Context, userID, id string) error
	CreateIntegrationFunc func(ctx context.Context, in *models.Integration) error
	ListIntegrationsFunc  func(ctx context.Context, userID string) ([]*models.Integration, error)
}

func (m *MockIntegrationsRepository) CreateWebhook(ctx context.Context, w *models.Webhook) error {
	if m.CreateWebhookFunc != nil {
		return m.CreateWebhookFunc(ctx, w)
	}
	w.ID = "webhook-1"
	return nil
}

func (m *MockIntegrationsRepository) ListWebhooks(ctx context.Context, userID string) ([]*models.Webhook, error) {
	if m.ListWebhooksFunc != nil {
		return m.ListWebhooksFunc(ctx, userID)
	}
	return []*models.Webhook{}, nil
}

func (m *MockIntegrationsRepository) DeleteWebhook(ctx context.Context, userID, id string) error {
	if m.DeleteWebhookFunc != nil {
		return m.DeleteWebhookFunc(ctx, userID, id)
	}
	return nil
}

func (m *MockIntegrationsRepository) CreateIntegration(ctx context.Context, in *models.Integration) error {
	if m.CreateIntegrationFunc != nil {
		return m.CreateIntegrationFunc(ctx, in)
	}
	in.ID = "integration-1"
	return nil
}

func (m *MockIntegrationsRepository) ListIntegrations(ctx context.Context, userID string) ([]*models.Integration, error) {
	if m.ListIntegrationsFunc != nil {
		return m.ListIntegrationsFunc(ctx, userID)
	}
	return []*models.Integration{}, nil
}

// MockSyncRepository implements SyncRepository for testing
type MockSyncRepository struct {
	UpsertFunc func(ctx context.Context, userID, collection string, docs []models.Document, syncedAt time.Time) (int, error)
	ListFunc   func(ctx context.Context, userID, collection string) ([]models.Document, error)
	ClearFunc  func(ctx context.Context, userID, collection string) (int64, error)
}

func (m *MockSyncRepository) Upsert(ctx context.Context, userID, collection string, docs []models.Document, syncedAt time.Time) (int, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, userID, collection, docs, syncedAt)
	}
	return len(docs), nil
}

func (m *MockSyncRepository) List(ctx context.Context, userID, collection string) ([]models.Document, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, collection)
	}
	return []models.Document{}, nil
}

func (m *MockSyncRepository) Clear(ctx context.Context, userID, collection string) (int64, error) {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx, userID, collection)
	}
	return 0, nil
}

// MockMailer implements Mailer for testing
type MockMailer struct {
	SendWelcomeFunc func(ctx context.Context, email, username string) error
}

func (m *MockMailer) SendWelcome(ctx context.Context, email, username string) error {
	if m.SendWelcomeFunc != nil {
		return m.SendWelcomeFunc(ctx, email, username)
	}
	return nil
}

// MockSESClient implements SESClient for testing
type MockSESClient struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESClient) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, params, optFns...)
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

// MockIDTokenVerifier implements oauth.IDTokenVerifier for testing
type MockIDTokenVerifier struct {
	VerifyIDTokenFunc func(ctx context.Context, idToken string) (*oauth.Identity, error)
}

func (m *MockIDTokenVerifier) Name() string { return oauth.ProviderGoogle }

func (m *MockIDTokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (*oauth.Identity, error) {
	if m.VerifyIDTokenFunc != nil {
		return m.VerifyIDTokenFunc(ctx, idToken)
	}
	return nil, oauth.ErrInvalidIDToken
}

// MockCodeExchanger implements oauth.CodeExchanger for testing
type MockCodeExchanger struct {
	AuthorizationURLFunc func() string
	ExchangeFunc         func(ctx context.Context, code string) (*oauth.Identity, error)
}

func (m *MockCodeExchanger) Name() string { return oauth.ProviderGitHub }

func (m *MockCodeExchanger) AuthorizationURL() string {
	if m.AuthorizationURLFunc != nil {
		return m.AuthorizationURLFunc()
	}
	return "https://github.com/login/oauth/authorize"
}

func (m *MockCodeExchanger) Exchange(ctx context.Context, code string) (*oauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, code)
	}
	return nil, models.ErrProviderExchange
}

// MockEventRecorder records auth events for assertions
type MockEventRecorder struct {
	Events []string
}

func (m *MockEventRecorder) RecordAuthEvent(event string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	m.Events = append(m.Events, event+":"+result)
}

// NewTestUser creates an active test user
func NewTestUser(id, email, username string) *models.User {
	now := time.Now()
	return &models.User{
		ID:            id,
		Email:         email,
		Username:      username,
		IsActive:      true,
		Level:         1,
		XPToNextLevel: 100,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
