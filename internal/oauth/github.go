package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Hayacku/initium/internal/models"
)

const (
	githubAuthorizeURL = "https://github.com/login/oauth/authorize"
	githubTokenURL     = "https://github.com/login/oauth/access_token"
	githubAPIURL       = "https://api.github.com"
)

// ExchangeError is GitHub's error report from the token endpoint
type ExchangeError struct {
	Description string
}

func (e *ExchangeError) Error() string {
	return "GitHub OAuth error: " + e.Description
}

func (e *ExchangeError) Unwrap() error {
	return models.ErrProviderExchange
}

// GitHubConfig configures GitHubClient. The URL fields default to github.com
// and are overridden in tests.
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthorizeURL string
	TokenURL     string
	APIURL       string
	HTTPClient   *http.Client
}

type GitHubClient struct {
	cfg  GitHubConfig
	http *http.Client
}

func NewGitHubClient(cfg GitHubConfig) *GitHubClient {
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = githubAuthorizeURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = githubTokenURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = githubAPIURL
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return &GitHubClient{cfg: cfg, http: newHTTPClient(cfg.HTTPClient)}
}

func (g *GitHubClient) Name() string { return ProviderGitHub }

// AuthorizationURL is where the browser is sent to grant user:email
func (g *GitHubClient) AuthorizationURL() string {
	q := url.Values{}
	q.Set("client_id", g.cfg.ClientID)
	q.Set("redirect_uri", g.cfg.RedirectURL)
	q.Set("scope", "user:email")
	return g.cfg.AuthorizeURL + "?" + q.Encode()
}

type githubToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Error        string `json:"error"`
	ErrorDesc    string `json:"error_description"`
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Exchange trades an authorization code for the GitHub account behind it
func (g *GitHubClient) Exchange(ctx context.Context, code string) (*Identity, error) {
	token, err := g.exchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	var user githubUser
	if err := g.getJSON(ctx, "/user", token.AccessToken, &user); err != nil {
		return nil, fmt.Errorf("fetch github user: %w", err)
	}

	email := user.Email
	if email == "" {
		var emails []githubEmail
		if err := g.getJSON(ctx, "/user/emails", token.AccessToken, &emails); err != nil {
			return nil, fmt.Errorf("fetch github emails: %w", err)
		}
		for _, e := range emails {
			if e.Primary {
				email = e.Email
				break
			}
		}
	}
	if email == "" {
		return nil, models.ErrNoProviderEmail
	}

	externalID := strconv.FormatInt(user.ID, 10)
	username := user.Login
	if username == "" {
		username = "github_user_" + externalID
	}

	return &Identity{
		Provider:      ProviderGitHub,
		ExternalID:    externalID,
		Email:         email,
		EmailVerified: true,
		Username:      username,
		AvatarURL:     user.AvatarURL,
		AccessToken:   token.AccessToken,
		RefreshToken:  token.RefreshToken,
	}, nil
}

func (g *GitHubClient) exchangeCode(ctx context.Context, code string) (*githubToken, error) {
	form := url.Values{}
	form.Set("client_id", g.cfg.ClientID)
	form.Set("client_secret", g.cfg.ClientSecret)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github token request: %w", err)
	}
	defer resp.Body.Close()

	var tr githubToken
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode github token response: %w", err)
	}
	if tr.Error != "" {
		desc := tr.ErrorDesc
		if desc == "" {
			desc = "Unknown error"
		}
		return nil, &ExchangeError{Description: desc}
	}
	if tr.AccessToken == "" {
		return nil, &ExchangeError{Description: "no access_token in response"}
	}
	return &tr, nil
}

func (g *GitHubClient) getJSON(ctx context.Context, path, accessToken string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.APIURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github api error: status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
