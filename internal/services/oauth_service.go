package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/Hayacku/initium/internal/models"
	"github.com/Hayacku/initium/internal/oauth"
	pkglogger "github.com/Hayacku/initium/pkg/logger"
)

// usernameAttempts bounds the numeric suffixes tried for a new OAuth user
const usernameAttempts = 20

// OAuthAccountRepository defines provider link storage
type OAuthAccountRepository interface {
	GetByProviderID(ctx context.Context, provider, providerUserID string) (*models.OAuthAccount, error)
	Create(ctx context.Context, account *models.OAuthAccount) error
	UpdateTokens(ctx context.Context, id, accessToken, refreshToken string) error
}

// OAuthServiceDeps groups the collaborators of OAuthService. Google and
// GitHub are nil when the provider is not configured.
type OAuthServiceDeps struct {
	Users       UserRepository
	Accounts    OAuthAccountRepository
	Sessions    *SessionIssuer
	Google      oauth.IDTokenVerifier
	GitHub      oauth.CodeExchanger
	FrontendURL string
	Events      AuthEventRecorder
	Logger      *slog.Logger
	Audit       *pkglogger.AuditLogger
}

// OAuthService turns provider identities into local sessions
type OAuthService struct {
	users       UserRepository
	accounts    OAuthAccountRepository
	sessions    *SessionIssuer
	google      oauth.IDTokenVerifier
	github      oauth.CodeExchanger
	frontendURL string
	events      AuthEventRecorder
	logger      *slog.Logger
	audit       *pkglogger.AuditLogger
}

func NewOAuthService(deps OAuthServiceDeps) *OAuthService {
	s := &OAuthService{
		users:       deps.Users,
		accounts:    deps.Accounts,
		sessions:    deps.Sessions,
		google:      deps.Google,
		github:      deps.GitHub,
		frontendURL: strings.TrimRight(deps.FrontendURL, "/"),
		events:      deps.Events,
		logger:      deps.Logger,
		audit:       deps.Audit,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.events == nil {
		s.events = nopRecorder{}
	}
	return s
}

// GoogleSignIn verifies a Google or Firebase ID token and signs the user in
func (s *OAuthService) GoogleSignIn(ctx context.Context, idToken, ip string) (*models.TokenPair, error) {
	if s.google == nil {
		return nil, models.ErrGoogleNotConfigured
	}
	identity, err := s.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.events.RecordAuthEvent(pkglogger.EventOAuthSignIn, false)
		return nil, err
	}
	return s.Resolve(ctx, identity, ip)
}

// GitHubLoginURL is where the browser is sent to authorize the app
func (s *OAuthService) GitHubLoginURL() (string, error) {
	if s.github == nil {
		return "", models.ErrGitHubNotConfigured
	}
	return s.github.AuthorizationURL(), nil
}

// GitHubCallback completes the code exchange and returns the frontend URL
// carrying the new tokens.
func (s *OAuthService) GitHubCallback(ctx context.Context, code, ip string) (string, error) {
	if s.github == nil {
		return "", models.ErrGitHubNotConfigured
	}
	identity, err := s.github.Exchange(ctx, code)
	if err != nil {
		s.events.RecordAuthEvent(pkglogger.EventOAuthSignIn, false)
		return "", err
	}

	pair, err := s.Resolve(ctx, identity, ip)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("access_token", pair.AccessToken)
	q.Set("refresh_token", pair.RefreshToken)
	return s.frontendURL + "/auth/callback?" + q.Encode(), nil
}

// Resolve maps an identity onto a local user and issues tokens. An existing
// link wins, then an account with the same email, otherwise a new account
// without a password is created.
func (s *OAuthService) Resolve(ctx context.Context, identity *oauth.Identity, ip string) (*models.TokenPair, error) {
	if identity.ExternalID == "" || identity.Email == "" {
		return nil, models.ErrMissingIdentity
	}

	user, err := s.resolveUser(ctx, identity)
	if err != nil {
		if !errors.Is(err, models.ErrInternalServer) {
			return nil, err
		}
		s.logger.Error("failed to resolve oauth identity",
			slog.String("provider", identity.Provider),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !user.IsActive {
		s.events.RecordAuthEvent(pkglogger.EventOAuthSignIn, false)
		return nil, models.ErrAccountDisabled
	}

	pair, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to issue session", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.events.RecordAuthEvent(pkglogger.EventOAuthSignIn, true)
	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: pkglogger.EventOAuthSignIn,
		UserID:    user.ID,
		IPAddress: ip,
		Success:   true,
		Metadata:  map[string]string{"provider": identity.Provider},
	})
	return pair, nil
}

func (s *OAuthService) resolveUser(ctx context.Context, identity *oauth.Identity) (*models.User, error) {
	account, err := s.accounts.GetByProviderID(ctx, identity.Provider, identity.ExternalID)
	switch {
	case err == nil:
		if err := s.accounts.UpdateTokens(ctx, account.ID, identity.AccessToken, identity.RefreshToken); err != nil {
			return nil, internal("update provider tokens", err)
		}
		user, err := s.users.GetByID(ctx, account.UserID)
		if err != nil {
			return nil, internal("load linked user", err)
		}
		return user, nil
	case !errors.Is(err, models.ErrNotFound):
		return nil, internal("look up provider link", err)
	}

	email := strings.ToLower(identity.Email)
	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.users.AddOAuthProvider(ctx, user.ID, identity.Provider); err != nil {
			return nil, internal("add oauth provider", err)
		}
	case errors.Is(err, models.ErrNotFound):
		user, err = s.createUser(ctx, identity, email)
		if err != nil {
			return nil, err
		}
	default:
		return nil, internal("look up user by email", err)
	}

	return s.link(ctx, user, identity)
}

// link records the provider account. Losing a race with a concurrent
// sign-in for the same identity resolves to the link that won.
func (s *OAuthService) link(ctx context.Context, user *models.User, identity *oauth.Identity) (*models.User, error) {
	err := s.accounts.Create(ctx, &models.OAuthAccount{
		UserID:         user.ID,
		Provider:       identity.Provider,
		ProviderUserID: identity.ExternalID,
		AccessToken:    identity.AccessToken,
		RefreshToken:   identity.RefreshToken,
	})
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, models.ErrConflict) {
		return nil, internal("create provider link", err)
	}

	existing, err := s.accounts.GetByProviderID(ctx, identity.Provider, identity.ExternalID)
	if err != nil {
		return nil, internal("reload provider link", err)
	}
	if existing.UserID == user.ID {
		return user, nil
	}
	winner, err := s.users.GetByID(ctx, existing.UserID)
	if err != nil {
		return nil, internal("load linked user", err)
	}
	return winner, nil
}

// createUser inserts a password-less account. A username collision retries
// with a numeric suffix; an email collision means another request created
// the account first, so it is linked instead.
func (s *OAuthService) createUser(ctx context.Context, identity *oauth.Identity, email string) (*models.User, error) {
	base := identity.Username
	if base == "" {
		base = strings.SplitN(email, "@", 2)[0]
	}

	var avatar *string
	if identity.AvatarURL != "" {
		avatar = &identity.AvatarURL
	}

	username := base
	for attempt := 1; attempt <= usernameAttempts; attempt++ {
		created, err := s.users.Create(ctx, &models.User{
			Email:          email,
			Username:       username,
			IsActive:       true,
			IsVerified:     identity.EmailVerified,
			AvatarURL:      avatar,
			OAuthProviders: []string{identity.Provider},
		})
		switch {
		case err == nil:
			s.logger.Info("user created from oauth identity",
				slog.String("user_id", created.ID),
				slog.String("provider", identity.Provider))
			return created, nil
		case errors.Is(err, models.ErrUsernameTaken):
			username = base + strconv.Itoa(attempt)
		case errors.Is(err, models.ErrEmailTaken):
			user, err := s.users.GetByEmail(ctx, email)
			if err != nil {
				return nil, internal("reload user by email", err)
			}
			if err := s.users.AddOAuthProvider(ctx, user.ID, identity.Provider); err != nil {
				return nil, internal("add oauth provider", err)
			}
			return user, nil
		default:
			return nil, internal("create user", err)
		}
	}
	return nil, internal("create user", fmt.Errorf("no free username for %q", base))
}

func internal(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, models.ErrInternalServer)
}
