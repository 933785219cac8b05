package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/Hayacku/initium/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough"

func newTestTokenManager(now time.Time) *TokenManager {
	tm := NewTokenManager(testSecret, 0, 0)
	tm.now = func() time.Time { return now }
	return tm
}

func TestTokenManager_Defaults(t *testing.T) {
	tm := NewTokenManager(testSecret, 0, 0)
	assert.Equal(t, 30*time.Minute, tm.accessTTL)
	assert.Equal(t, 30*24*time.Hour, tm.RefreshTTL())
}

func TestTokenManager_RoundTrip(t *testing.T) {
	now := time.Now()
	tm := newTestTokenManager(now)

	access, err := tm.GenerateAccessToken("user-1")
	require.NoError(t, err)
	refresh, err := tm.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	claims, err := tm.Verify(access, models.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, models.TokenTypeAccess, claims.Type)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, now.Add(30*time.Minute), claims.ExpiresAt.Time, time.Second)

	claims, err = tm.Verify(refresh, models.TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.WithinDuration(t, now.Add(30*24*time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestTokenManager_KindMismatch(t *testing.T) {
	tm := newTestTokenManager(time.Now())

	access, err := tm.GenerateAccessToken("user-1")
	require.NoError(t, err)
	refresh, err := tm.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	_, err = tm.Verify(access, models.TokenTypeRefresh)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = tm.Verify(refresh, models.TokenTypeAccess)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestTokenManager_UniqueTokens(t *testing.T) {
	tm := newTestTokenManager(time.Now())

	first, err := tm.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	second, err := tm.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestTokenManager_Expired(t *testing.T) {
	issuedAt := time.Now().Add(-time.Hour)
	tm := newTestTokenManager(issuedAt)

	access, err := tm.GenerateAccessToken("user-1")
	require.NoError(t, err)

	tm.now = func() time.Time { return issuedAt.Add(31 * time.Minute) }
	_, err = tm.Verify(access, models.TokenTypeAccess)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	tm := newTestTokenManager(time.Now())
	other := NewTokenManager("another-secret-value-entirely", 0, 0)

	access, err := other.GenerateAccessToken("user-1")
	require.NoError(t, err)

	_, err = tm.Verify(access, models.TokenTypeAccess)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestTokenManager_RejectsNoneAlgorithm(t *testing.T) {
	tm := newTestTokenManager(time.Now())

	claims := &models.TokenClaims{
		Type: models.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tm.Verify(unsigned, models.TokenTypeAccess)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestTokenManager_RejectsMissingExpiry(t *testing.T) {
	tm := newTestTokenManager(time.Now())

	claims := &models.TokenClaims{
		Type:             models.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = tm.Verify(signed, models.TokenTypeAccess)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestTokenManager_Garbage(t *testing.T) {
	tm := newTestTokenManager(time.Now())

	for _, token := range []string{"", "not.a.jwt", "a.b.c"} {
		_, err := tm.Verify(token, models.TokenTypeAccess)
		assert.True(t, errors.Is(err, models.ErrUnauthorized), token)
	}
}

func TestTokenManager_EmptySubject(t *testing.T) {
	tm := newTestTokenManager(time.Now())
	_, err := tm.Issue("", models.TokenTypeAccess, time.Minute)
	assert.Error(t, err)
}
