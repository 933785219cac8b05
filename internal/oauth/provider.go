// Package oauth verifies third-party identity assertions and turns them into
// a provider-neutral Identity.
package oauth

import (
	"context"
	"net/http"
	"time"
)

// Provider names stored in oauth_accounts.provider and users.oauth_providers
const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

const defaultHTTPTimeout = 10 * time.Second

// Identity is what a provider asserts about the signed-in account
type Identity struct {
	Provider      string
	ExternalID    string
	Email         string
	EmailVerified bool
	Username      string
	AvatarURL     string
	AccessToken   string
	RefreshToken  string
}

// IdentityProvider is the capability shared by every sign-in provider
type IdentityProvider interface {
	Name() string
}

// IDTokenVerifier checks a signed identity assertion issued to the client
type IDTokenVerifier interface {
	IdentityProvider
	VerifyIDToken(ctx context.Context, idToken string) (*Identity, error)
}

// CodeExchanger completes an authorization-code flow server side
type CodeExchanger interface {
	IdentityProvider
	AuthorizationURL() string
	Exchange(ctx context.Context, code string) (*Identity, error)
}

func newHTTPClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}
