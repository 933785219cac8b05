package oauth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Hayacku/initium/internal/models"
	"github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const (
	// GoogleCertsURL serves the keys for Google-issued ID tokens
	GoogleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"
	// FirebaseCertsURL serves the keys for Firebase Auth ID tokens
	FirebaseCertsURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

	defaultKeyTTL = time.Hour
	clockLeeway   = 30 * time.Second

	// minRefreshInterval bounds how often an unknown kid can trigger a fetch
	minRefreshInterval = time.Minute
	jwksFetchTimeout   = 10 * time.Second
)

// ErrInvalidIDToken is returned for any signature, issuer, audience or
// expiry failure
var ErrInvalidIDToken = fmt.Errorf("invalid firebase id token: %w", models.ErrUnauthorized)

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	FirebaseUID   string `json:"user_id"`
	jwt.RegisteredClaims
}

// GoogleConfig configures GoogleVerifier. ProjectID enables Firebase tokens.
type GoogleConfig struct {
	ClientID   string
	ProjectID  string
	JWKSURL    string
	HTTPClient *http.Client
}

// GoogleVerifier validates Google and Firebase ID tokens against the
// published signing keys. Keys are cached by kid. A miss refetches the key
// set at most once concurrently and at most once per minRefreshInterval.
type GoogleVerifier struct {
	audiences []string
	issuers   []string
	jwksURL   string
	http      *http.Client
	keys      *gocache.Cache
	fetches   singleflight.Group
	now       func() time.Time

	mu        sync.Mutex
	lastFetch time.Time
}

func NewGoogleVerifier(cfg GoogleConfig) *GoogleVerifier {
	v := &GoogleVerifier{
		issuers: []string{"https://accounts.google.com", "accounts.google.com"},
		jwksURL: cfg.JWKSURL,
		http:    newHTTPClient(cfg.HTTPClient),
		keys:    gocache.New(defaultKeyTTL, 10*time.Minute),
		now:     time.Now,
	}
	if cfg.ProjectID != "" {
		v.audiences = append(v.audiences, cfg.ProjectID)
		v.issuers = append(v.issuers, "https://securetoken.google.com/"+cfg.ProjectID)
	}
	if cfg.ClientID != "" {
		v.audiences = append(v.audiences, cfg.ClientID)
	}
	if v.jwksURL == "" {
		v.jwksURL = GoogleCertsURL
		if cfg.ProjectID != "" {
			v.jwksURL = FirebaseCertsURL
		}
	}
	return v
}

func (v *GoogleVerifier) Name() string { return ProviderGoogle }

// VerifyIDToken returns the identity asserted by idToken. Verification
// failures wrap ErrInvalidIDToken; failures to reach the key endpoint do not.
func (v *GoogleVerifier) VerifyIDToken(ctx context.Context, idToken string) (*Identity, error) {
	var fetchErr error
	claims := &googleClaims{}
	_, err := jwt.ParseWithClaims(idToken, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid header")
		}
		key, err := v.key(ctx, kid)
		if err != nil && !errors.Is(err, errUnknownKid) {
			fetchErr = err
		}
		return key, err
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockLeeway),
		jwt.WithTimeFunc(v.now),
	)
	if fetchErr != nil {
		return nil, fmt.Errorf("fetch google signing keys: %w", fetchErr)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}

	if !contains(v.issuers, claims.Issuer) {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidIDToken, claims.Issuer)
	}
	if !v.audienceAllowed(claims.Audience) {
		return nil, fmt.Errorf("%w: unexpected audience", ErrInvalidIDToken)
	}

	subject := claims.Subject
	if subject == "" {
		subject = claims.FirebaseUID
	}
	if subject == "" || claims.Email == "" {
		return nil, models.ErrMissingIdentity
	}

	return &Identity{
		Provider:      ProviderGoogle,
		ExternalID:    subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Username:      strings.SplitN(claims.Email, "@", 2)[0],
		AvatarURL:     claims.Picture,
		AccessToken:   idToken,
	}, nil
}

func (v *GoogleVerifier) audienceAllowed(aud jwt.ClaimStrings) bool {
	for _, a := range aud {
		if contains(v.audiences, a) {
			return true
		}
	}
	return false
}

var errUnknownKid = errors.New("signing key not found")

// key returns the RSA key for kid, refreshing the key set on a miss
func (v *GoogleVerifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if k, ok := v.keys.Get(kid); ok {
		return k.(*rsa.PublicKey), nil
	}
	if !v.refreshDue() {
		return nil, errUnknownKid
	}

	// The fetch is shared by every waiter, so it must not inherit the
	// cancellation of whichever caller started it.
	_, err, _ := v.fetches.Do("jwks", func() (interface{}, error) {
		if !v.refreshDue() {
			return nil, nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), jwksFetchTimeout)
		defer cancel()
		if err := v.refresh(fetchCtx); err != nil {
			return nil, err
		}
		v.mu.Lock()
		v.lastFetch = v.now()
		v.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	if k, ok := v.keys.Get(kid); ok {
		return k.(*rsa.PublicKey), nil
	}
	return nil, errUnknownKid
}

// refreshDue reports whether the last successful fetch is old enough to
// allow another one
func (v *GoogleVerifier) refreshDue() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastFetch.IsZero() || v.now().Sub(v.lastFetch) >= minRefreshInterval
}

func (v *GoogleVerifier) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return err
	}
	resp, err := v.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("jwks http %d", resp.StatusCode)
	}

	var set jwkSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("decode jwks: %w", err)
	}

	ttl := maxAge(resp.Header.Get("Cache-Control"))
	for _, k := range set.Keys {
		if !strings.EqualFold(k.Kty, "RSA") || k.Kid == "" {
			continue
		}
		pub, err := rsaPublicKey(k)
		if err != nil {
			continue
		}
		v.keys.Set(k.Kid, pub, ttl)
	}
	return nil
}

func rsaPublicKey(k jwk) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}
	e := 0
	for _, b := range eb {
		e = e<<8 | int(b)
	}
	if e == 0 {
		e = 65537
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
}

// maxAge reads max-age from a Cache-Control header
func maxAge(header string) time.Duration {
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if v, ok := strings.CutPrefix(part, "max-age="); ok {
			if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return defaultKeyTTL
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
