package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Hayacku/initium/internal/auth"
	"github.com/Hayacku/initium/internal/models"
	pkgauth "github.com/Hayacku/initium/pkg/auth"
	pkglogger "github.com/Hayacku/initium/pkg/logger"
)

// DefaultAPIKeyName is used when a key is created without a name
const DefaultAPIKeyName = "Default Key"

// apiKeyAttempts bounds retries when a freshly generated prefix collides
const apiKeyAttempts = 3

// UserRepository defines the account storage used by the services
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
	SetTwoFA(ctx context.Context, id string, enabled bool, secret *string) error
	AddOAuthProvider(ctx context.Context, id, provider string) error
}

// APIKeyRepository defines API key storage
type APIKeyRepository interface {
	Create(ctx context.Context, key *models.APIKey) error
	ListByUser(ctx context.Context, userID string) ([]*models.APIKey, error)
	DeleteByPrefix(ctx context.Context, userID, prefix string) error
}

// AuthEventRecorder counts authentication outcomes
type AuthEventRecorder interface {
	RecordAuthEvent(event string, success bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordAuthEvent(string, bool) {}

// AuthServiceDeps groups the collaborators of AuthService
type AuthServiceDeps struct {
	Users      UserRepository
	Sessions   *SessionIssuer
	Refresh    RefreshTokenRepository
	APIKeys    APIKeyRepository
	Tokens     *auth.TokenManager
	TOTP       *auth.TOTPManager
	Keys       *auth.APIKeyManager
	Delay      *auth.FailureDelay
	Mailer     Mailer
	Events     AuthEventRecorder
	Logger     *slog.Logger
	Audit      *pkglogger.AuditLogger
	BcryptCost int
}

// AuthService handles password accounts, sessions, 2FA and API keys
type AuthService struct {
	users      UserRepository
	sessions   *SessionIssuer
	refresh    RefreshTokenRepository
	apiKeys    APIKeyRepository
	tm         *auth.TokenManager
	totp       *auth.TOTPManager
	keys       *auth.APIKeyManager
	delay      *auth.FailureDelay
	mailer     Mailer
	events     AuthEventRecorder
	logger     *slog.Logger
	audit      *pkglogger.AuditLogger
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(deps AuthServiceDeps) *AuthService {
	s := &AuthService{
		users:      deps.Users,
		sessions:   deps.Sessions,
		refresh:    deps.Refresh,
		apiKeys:    deps.APIKeys,
		tm:         deps.Tokens,
		totp:       deps.TOTP,
		keys:       deps.Keys,
		delay:      deps.Delay,
		mailer:     deps.Mailer,
		events:     deps.Events,
		logger:     deps.Logger,
		audit:      deps.Audit,
		bcryptCost: deps.BcryptCost,
		now:        time.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.events == nil {
		s.events = nopRecorder{}
	}
	if s.bcryptCost == 0 {
		s.bcryptCost = pkgauth.BcryptCost
	}
	return s
}

// Register creates a password account
func (s *AuthService) Register(ctx context.Context, email, username, password, ip string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("password must be between %d and %d characters: %w",
			pkgauth.MinPasswordLen, pkgauth.MaxPasswordLen, models.ErrBadRequest)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		s.recordRegisterFailure(ip, "email_taken")
		return nil, models.ErrEmailTaken
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		s.recordRegisterFailure(ip, "username_taken")
		return nil, models.ErrUsernameTaken
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check username", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hash, err := pkgauth.HashPasswordWithCost(password, s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	created, err := s.users.Create(ctx, &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
	})
	if err != nil {
		// a concurrent registration can slip past the pre-checks
		if errors.Is(err, models.ErrEmailTaken) || errors.Is(err, models.ErrUsernameTaken) {
			s.recordRegisterFailure(ip, "conflict")
			return nil, err
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user registered", slog.String("user_id", created.ID))
	s.events.RecordAuthEvent(pkglogger.EventRegister, true)
	s.audit.LogAccountAction(pkglogger.EventRegister, created.ID, ip, nil)

	if s.mailer != nil {
		if err := s.mailer.SendWelcome(ctx, created.Email, created.Username); err != nil {
			s.logger.Warn("failed to send welcome email", slog.String("user_id", created.ID), slog.Any("error", err))
		}
	}
	return created, nil
}

func (s *AuthService) recordRegisterFailure(ip, reason string) {
	s.events.RecordAuthEvent(pkglogger.EventRegister, false)
	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     pkglogger.EventRegister,
		IPAddress:     ip,
		FailureReason: reason,
	})
}

// Login checks the password before the account state, so a disabled account
// is only revealed to someone who knows its password.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*models.TokenPair, error) {
	start := s.now()
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("failed to get user by email", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		s.loginFailed(ctx, start, "", ip, "unknown_email")
		return nil, models.ErrInvalidCredentials
	}

	if !pkgauth.CheckPassword(user.PasswordHash, password) {
		s.loginFailed(ctx, start, user.ID, ip, "invalid_password")
		return nil, models.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.loginFailed(ctx, start, user.ID, ip, "account_disabled")
		return nil, models.ErrAccountDisabled
	}

	pair, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to issue session", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	s.events.RecordAuthEvent(pkglogger.EventLogin, true)
	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: pkglogger.EventLogin,
		UserID:    user.ID,
		IPAddress: ip,
		Success:   true,
	})
	return pair, nil
}

func (s *AuthService) loginFailed(ctx context.Context, start time.Time, userID, ip, reason string) {
	s.events.RecordAuthEvent(pkglogger.EventLogin, false)
	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     pkglogger.EventLogin,
		UserID:        userID,
		IPAddress:     ip,
		FailureReason: reason,
	})
	s.delay.WaitFrom(ctx, start)
}

// Refresh exchanges a stored refresh token for a new access token. The
// refresh token itself is returned unchanged.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)

	claims, err := s.tm.Verify(refreshToken, models.TokenTypeRefresh)
	if err != nil {
		s.events.RecordAuthEvent(pkglogger.EventTokenRefresh, false)
		return nil, models.ErrInvalidRefresh
	}

	stored, err := s.refresh.GetActive(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.events.RecordAuthEvent(pkglogger.EventTokenRefresh, false)
			return nil, models.ErrInvalidSession
		}
		s.logger.Error("failed to load refresh token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if !stored.Usable(s.now()) {
		s.events.RecordAuthEvent(pkglogger.EventTokenRefresh, false)
		return nil, models.ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidRefresh
		}
		s.logger.Error("failed to load user for refresh", slog.String("user_id", claims.UserID()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if !user.IsActive {
		return nil, models.ErrAccountDisabled
	}

	access, err := s.tm.GenerateAccessToken(user.ID)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.events.RecordAuthEvent(pkglogger.EventTokenRefresh, true)
	return models.NewTokenPair(access, refreshToken), nil
}

// Logout revokes the caller's refresh token. Unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, userID, refreshToken, ip string) error {
	if err := s.refresh.Revoke(ctx, strings.TrimSpace(refreshToken), userID); err != nil {
		s.logger.Error("failed to revoke refresh token", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}
	s.logger.Info("user logged out", slog.String("user_id", userID))
	s.audit.LogAccountAction(pkglogger.EventLogout, userID, ip, nil)
	return nil
}

// UpdateProfile changes username, email or avatar
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, upd models.UserUpdate, ip string) (*models.User, error) {
	if upd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*upd.Email))
		upd.Email = &email
	}
	if upd.Username != nil {
		username := strings.TrimSpace(*upd.Username)
		upd.Username = &username
	}

	user, err := s.users.Update(ctx, userID, upd)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrEmailTaken), errors.Is(err, models.ErrUsernameTaken):
			return nil, err
		case errors.Is(err, models.ErrNotFound):
			return nil, models.ErrUserNotFound
		}
		s.logger.Error("failed to update user", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.audit.LogAccountAction(pkglogger.EventProfileUpdate, userID, ip, nil)
	return user, nil
}

// SetupTwoFA generates a secret and QR code. Nothing is stored until
// EnableTwoFA proves the authenticator works.
func (s *AuthService) SetupTwoFA(user *models.User) (*models.TwoFASetup, error) {
	secret, uri, err := s.totp.GenerateSecret(user.Email)
	if err != nil {
		s.logger.Error("failed to generate totp secret", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	qr, err := s.totp.QRCodeDataURL(uri)
	if err != nil {
		s.logger.Error("failed to render qr code", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return &models.TwoFASetup{Secret: secret, QRCode: qr, ManualEntryKey: secret}, nil
}

func (s *AuthService) EnableTwoFA(ctx context.Context, user *models.User, code, secret, ip string) error {
	if !s.totp.Validate(secret, code) {
		return models.ErrInvalidTOTPCode
	}
	if err := s.users.SetTwoFA(ctx, user.ID, true, &secret); err != nil {
		s.logger.Error("failed to enable 2fa", slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}
	s.audit.LogAccountAction(pkglogger.EventTwoFAEnable, user.ID, ip, nil)
	return nil
}

func (s *AuthService) DisableTwoFA(ctx context.Context, user *models.User, code, ip string) error {
	if !user.TwoFAEnabled || user.TwoFASecret == nil {
		return models.ErrTwoFANotEnabled
	}
	if !s.totp.Validate(*user.TwoFASecret, code) {
		return models.ErrInvalidTOTPCode
	}
	if err := s.users.SetTwoFA(ctx, user.ID, false, nil); err != nil {
		s.logger.Error("failed to disable 2fa", slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}
	s.audit.LogAccountAction(pkglogger.EventTwoFADisable, user.ID, ip, nil)
	return nil
}

// VerifyTwoFA signs in with a TOTP code in place of a password
func (s *AuthService) VerifyTwoFA(ctx context.Context, userID, code, ip string) (*models.TokenPair, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUserNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !user.TwoFAEnabled || user.TwoFASecret == nil {
		return nil, models.ErrTwoFAUnavailable
	}

	if !s.totp.Validate(*user.TwoFASecret, code) {
		s.events.RecordAuthEvent(pkglogger.EventTwoFAVerify, false)
		s.audit.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     pkglogger.EventTwoFAVerify,
			UserID:        user.ID,
			IPAddress:     ip,
			FailureReason: "invalid_code",
		})
		return nil, models.ErrInvalidLoginCode
	}

	if !user.IsActive {
		return nil, models.ErrAccountDisabled
	}

	pair, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to issue session", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.events.RecordAuthEvent(pkglogger.EventTwoFAVerify, true)
	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: pkglogger.EventTwoFAVerify,
		UserID:    user.ID,
		IPAddress: ip,
		Success:   true,
	})
	return pair, nil
}

// CreateAPIKey returns the raw key. It is never retrievable again.
func (s *AuthService) CreateAPIKey(ctx context.Context, userID, name, ip string) (*models.APIKeyResponse, error) {
	if name = strings.TrimSpace(name); name == "" {
		name = DefaultAPIKeyName
	}

	for attempt := 0; attempt < apiKeyAttempts; attempt++ {
		raw, prefix, hash, err := s.keys.Generate()
		if err != nil {
			s.logger.Error("failed to generate api key", slog.String("user_id", userID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}

		key := &models.APIKey{UserID: userID, Prefix: prefix, HashedKey: hash, Name: name}
		err = s.apiKeys.Create(ctx, key)
		if errors.Is(err, models.ErrConflict) {
			continue
		}
		if err != nil {
			s.logger.Error("failed to store api key", slog.String("user_id", userID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}

		s.audit.LogAccountAction(pkglogger.EventAPIKeyCreate, userID, ip, map[string]string{"prefix": prefix})
		return &models.APIKeyResponse{Key: raw, Prefix: prefix, Name: name, CreatedAt: key.CreatedAt}, nil
	}

	s.logger.Error("api key prefix collided repeatedly", slog.String("user_id", userID))
	return nil, models.ErrInternalServer
}

func (s *AuthService) ListAPIKeys(ctx context.Context, userID string) ([]models.APIKeyInfo, error) {
	keys, err := s.apiKeys.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list api keys", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	infos := make([]models.APIKeyInfo, 0, len(keys))
	for _, k := range keys {
		infos = append(infos, k.ToInfo())
	}
	return infos, nil
}

// RevokeAPIKey deletes the caller's key with that prefix, if any
func (s *AuthService) RevokeAPIKey(ctx context.Context, userID, prefix, ip string) error {
	if err := s.apiKeys.DeleteByPrefix(ctx, userID, prefix); err != nil {
		s.logger.Error("failed to revoke api key", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}
	s.audit.LogAccountAction(pkglogger.EventAPIKeyRevoke, userID, ip, map[string]string{"prefix": prefix})
	return nil
}
