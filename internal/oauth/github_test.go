package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/Hayacku/initium/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGitHub struct {
	tokenBody  map[string]string
	user       githubUser
	emails     []githubEmail
	emailsHits int
}

func (f *fakeGitHub) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_ = json.NewEncoder(w).Encode(f.tokenBody)
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gh-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(f.user)
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		f.emailsHits++
		_ = json.NewEncoder(w).Encode(f.emails)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGitHub(srv *httptest.Server) *GitHubClient {
	return NewGitHubClient(GitHubConfig{
		ClientID:     "gh-client",
		ClientSecret: "gh-secret",
		RedirectURL:  "http://localhost:3000/auth/github/callback",
		TokenURL:     srv.URL + "/login/oauth/access_token",
		APIURL:       srv.URL,
	})
}

func TestGitHubClient_AuthorizationURL(t *testing.T) {
	g := NewGitHubClient(GitHubConfig{ClientID: "gh-client", RedirectURL: "http://localhost:3000/auth/github/callback"})

	u, err := url.Parse(g.AuthorizationURL())
	require.NoError(t, err)
	assert.Equal(t, "github.com", u.Host)
	assert.Equal(t, "/login/oauth/authorize", u.Path)
	assert.Equal(t, "gh-client", u.Query().Get("client_id"))
	assert.Equal(t, "user:email", u.Query().Get("scope"))
	assert.Equal(t, "http://localhost:3000/auth/github/callback", u.Query().Get("redirect_uri"))
}

func TestGitHubClient_ExchangePublicEmail(t *testing.T) {
	f := &fakeGitHub{
		tokenBody: map[string]string{"access_token": "gh-token"},
		user:      githubUser{ID: 42, Login: "octo", Email: "octo@example.com", AvatarURL: "https://example.com/o.png"},
	}
	id, err := newTestGitHub(f.server(t)).Exchange(context.Background(), "the-code")
	require.NoError(t, err)

	assert.Equal(t, ProviderGitHub, id.Provider)
	assert.Equal(t, "42", id.ExternalID)
	assert.Equal(t, "octo@example.com", id.Email)
	assert.Equal(t, "octo", id.Username)
	assert.True(t, id.EmailVerified)
	assert.Equal(t, "gh-token", id.AccessToken)
	assert.Zero(t, f.emailsHits)
}

func TestGitHubClient_ExchangePrimaryEmailFallback(t *testing.T) {
	f := &fakeGitHub{
		tokenBody: map[string]string{"access_token": "gh-token"},
		user:      githubUser{ID: 7},
		emails: []githubEmail{
			{Email: "old@example.com"},
			{Email: "main@example.com", Primary: true, Verified: true},
		},
	}
	id, err := newTestGitHub(f.server(t)).Exchange(context.Background(), "the-code")
	require.NoError(t, err)

	assert.Equal(t, "main@example.com", id.Email)
	assert.Equal(t, "github_user_7", id.Username)
	assert.Equal(t, 1, f.emailsHits)
}

func TestGitHubClient_ExchangeNoEmail(t *testing.T) {
	f := &fakeGitHub{
		tokenBody: map[string]string{"access_token": "gh-token"},
		user:      githubUser{ID: 7, Login: "ghost"},
		emails:    []githubEmail{{Email: "secondary@example.com"}},
	}
	_, err := newTestGitHub(f.server(t)).Exchange(context.Background(), "the-code")
	assert.ErrorIs(t, err, models.ErrNoProviderEmail)
}

func TestGitHubClient_ExchangeError(t *testing.T) {
	f := &fakeGitHub{
		tokenBody: map[string]string{"error": "bad_verification_code", "error_description": "The code passed is incorrect or expired."},
	}
	_, err := newTestGitHub(f.server(t)).Exchange(context.Background(), "the-code")

	var exErr *ExchangeError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "GitHub OAuth error: The code passed is incorrect or expired.", err.Error())
	assert.ErrorIs(t, err, models.ErrProviderExchange)
	assert.ErrorIs(t, err, models.ErrBadRequest)
}
