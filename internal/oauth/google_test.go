package oauth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Hayacku/initium/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProject = "initium-test"

type jwksServer struct {
	*httptest.Server
	key  *rsa.PrivateKey
	hits atomic.Int32
	// onRequest runs before the key set is written
	onRequest func()
}

func newJWKSServer(t *testing.T) *jwksServer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	s := &jwksServer{key: key}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		if s.onRequest != nil {
			s.onRequest()
		}
		w.Header().Set("Cache-Control", "public, max-age=600")
		_ = json.NewEncoder(w).Encode(jwkSet{Keys: []jwk{{
			Kty: "RSA",
			Kid: "kid-1",
			N:   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}}})
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *jwksServer) sign(t *testing.T, kid string, claims googleClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	signed, err := tok.SignedString(s.key)
	require.NoError(t, err)
	return signed
}

func validClaims(now time.Time) googleClaims {
	return googleClaims{
		Email:         "ada@example.com",
		EmailVerified: true,
		Picture:       "https://example.com/ada.png",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "google-sub-1",
			Issuer:    "https://securetoken.google.com/" + testProject,
			Audience:  jwt.ClaimStrings{testProject},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func newTestVerifier(s *jwksServer) *GoogleVerifier {
	return NewGoogleVerifier(GoogleConfig{ClientID: "client-id", ProjectID: testProject, JWKSURL: s.URL})
}

func TestGoogleVerifier_ValidToken(t *testing.T) {
	s := newJWKSServer(t)
	v := newTestVerifier(s)

	token := s.sign(t, "kid-1", validClaims(time.Now()))
	id, err := v.VerifyIDToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, ProviderGoogle, id.Provider)
	assert.Equal(t, "google-sub-1", id.ExternalID)
	assert.Equal(t, "ada@example.com", id.Email)
	assert.Equal(t, "ada", id.Username)
	assert.True(t, id.EmailVerified)
	assert.Equal(t, token, id.AccessToken)
}

func TestGoogleVerifier_CachesKeys(t *testing.T) {
	s := newJWKSServer(t)
	v := newTestVerifier(s)

	for i := 0; i < 3; i++ {
		_, err := v.VerifyIDToken(context.Background(), s.sign(t, "kid-1", validClaims(time.Now())))
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), s.hits.Load())
}

func TestGoogleVerifier_UnknownKidsThrottleRefetch(t *testing.T) {
	s := newJWKSServer(t)
	v := newTestVerifier(s)
	now := time.Now()
	v.now = func() time.Time { return now }

	for i := 0; i < 20; i++ {
		kid := fmt.Sprintf("bogus-%d", i)
		_, err := v.VerifyIDToken(context.Background(), s.sign(t, kid, validClaims(now)))
		assert.ErrorIs(t, err, ErrInvalidIDToken)
	}
	assert.Equal(t, int32(1), s.hits.Load())

	// Known keys keep working while refetches are throttled
	_, err := v.VerifyIDToken(context.Background(), s.sign(t, "kid-1", validClaims(now)))
	require.NoError(t, err)
	assert.Equal(t, int32(1), s.hits.Load())

	now = now.Add(minRefreshInterval)
	_, err = v.VerifyIDToken(context.Background(), s.sign(t, "bogus-20", validClaims(now)))
	assert.ErrorIs(t, err, ErrInvalidIDToken)
	assert.Equal(t, int32(2), s.hits.Load())
}

func TestGoogleVerifier_FetchSurvivesCallerCancel(t *testing.T) {
	s := newJWKSServer(t)
	v := newTestVerifier(s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.onRequest = cancel

	id, err := v.VerifyIDToken(ctx, s.sign(t, "kid-1", validClaims(time.Now())))
	require.NoError(t, err)
	assert.Equal(t, "google-sub-1", id.ExternalID)
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestGoogleVerifier_Rejections(t *testing.T) {
	s := newJWKSServer(t)
	now := time.Now()

	tests := []struct {
		name   string
		kid    string
		mutate func(c *googleClaims)
	}{
		{name: "wrong audience", kid: "kid-1", mutate: func(c *googleClaims) { c.Audience = jwt.ClaimStrings{"someone-else"} }},
		{name: "wrong issuer", kid: "kid-1", mutate: func(c *googleClaims) { c.Issuer = "https://evil.example.com" }},
		{name: "expired", kid: "kid-1", mutate: func(c *googleClaims) { c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour)) }},
		{name: "unknown kid", kid: "kid-2", mutate: func(c *googleClaims) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := validClaims(now)
			tt.mutate(&claims)
			_, err := newTestVerifier(s).VerifyIDToken(context.Background(), s.sign(t, tt.kid, claims))
			assert.ErrorIs(t, err, ErrInvalidIDToken)
			assert.ErrorIs(t, err, models.ErrUnauthorized)
		})
	}
}

func TestGoogleVerifier_RejectsHMAC(t *testing.T) {
	s := newJWKSServer(t)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims(time.Now()))
	tok.Header["kid"] = "kid-1"
	signed, err := tok.SignedString([]byte("shared-secret"))
	require.NoError(t, err)

	_, err = newTestVerifier(s).VerifyIDToken(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidIDToken)
}

func TestGoogleVerifier_MissingEmail(t *testing.T) {
	s := newJWKSServer(t)
	claims := validClaims(time.Now())
	claims.Email = ""

	_, err := newTestVerifier(s).VerifyIDToken(context.Background(), s.sign(t, "kid-1", claims))
	assert.ErrorIs(t, err, models.ErrMissingIdentity)
}

func TestGoogleVerifier_KeyEndpointDown(t *testing.T) {
	s := newJWKSServer(t)
	token := s.sign(t, "kid-1", validClaims(time.Now()))
	s.Close()

	_, err := newTestVerifier(s).VerifyIDToken(context.Background(), token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrUnauthorized)
}

func TestMaxAge(t *testing.T) {
	assert.Equal(t, 600*time.Second, maxAge("public, max-age=600, must-revalidate"))
	assert.Equal(t, defaultKeyTTL, maxAge("no-store"))
	assert.Equal(t, defaultKeyTTL, maxAge(""))
}
