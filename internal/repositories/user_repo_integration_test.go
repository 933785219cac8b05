//go:build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/Hayacku/initium/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	repo := NewUserRepository(testDB)

	created := seedUser(t, "alice")
	assert.Equal(t, 1, created.Level)
	assert.Equal(t, 100, created.XPToNextLevel)
	assert.Empty(t, created.OAuthProviders)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	_, err = repo.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUserRepository_DuplicateConstraints(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	repo := NewUserRepository(testDB)
	seedUser(t, "bob")

	_, err := repo.Create(ctx, &models.User{Email: "bob@example.com", Username: "other", IsActive: true})
	assert.ErrorIs(t, err, models.ErrEmailTaken)

	_, err = repo.Create(ctx, &models.User{Email: "other@example.com", Username: "bob", IsActive: true})
	assert.ErrorIs(t, err, models.ErrUsernameTaken)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestUserRepository_TwoFAAndProviders(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	repo := NewUserRepository(testDB)
	user := seedUser(t, "carol")

	secret := "JBSWY3DPEHPK3PXP"
	require.NoError(t, repo.SetTwoFA(ctx, user.ID, true, &secret))
	require.NoError(t, repo.AddOAuthProvider(ctx, user.ID, "google"))
	require.NoError(t, repo.AddOAuthProvider(ctx, user.ID, "google"))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.TwoFAEnabled)
	require.NotNil(t, got.TwoFASecret)
	assert.Equal(t, secret, *got.TwoFASecret)
	assert.Equal(t, []string{"google"}, got.OAuthProviders)

	require.NoError(t, repo.SetTwoFA(ctx, user.ID, false, nil))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.TwoFAEnabled)
	assert.Nil(t, got.TwoFASecret)
}

func TestUserRepository_LeaderboardAndRank(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	repo := NewUserRepository(testDB)

	low := seedUser(t, "low")
	high := seedUser(t, "high")
	require.NoError(t, repo.AddXP(ctx, low.ID, 10))
	require.NoError(t, repo.AddXP(ctx, high.ID, 50))

	board, err := repo.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, "high", board[0].Username)
	assert.Equal(t, 50, board[0].TotalXP)

	ahead, err := repo.CountWithMoreXP(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, ahead)
}

func TestRefreshTokenRepository_Lifecycle(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	repo := NewRefreshTokenRepository(testDB)
	user := seedUser(t, "dave")

	live := &models.RefreshToken{UserID: user.ID, Token: "live-token", ExpiresAt: time.Now().Add(time.Hour)}
	stale := &models.RefreshToken{UserID: user.ID, Token: "stale-token", ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, repo.Create(ctx, live))
	require.NoError(t, repo.Create(ctx, stale))

	got, err := repo.GetActive(ctx, "live-token")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)

	require.NoError(t, repo.Revoke(ctx, "live-token", user.ID))
	require.NoError(t, repo.Revoke(ctx, "live-token", user.ID))
	_, err = repo.GetActive(ctx, "live-token")
	assert.ErrorIs(t, err, models.ErrNotFound)

	deleted, err := repo.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestOAuthAccountRepository_UniqueIdentity(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	repo := NewOAuthAccountRepository(testDB)
	user := seedUser(t, "erin")

	account := &models.OAuthAccount{UserID: user.ID, Provider: "github", ProviderUserID: "42", AccessToken: "a"}
	require.NoError(t, repo.Create(ctx, account))

	dup := &models.OAuthAccount{UserID: user.ID, Provider: "github", ProviderUserID: "42"}
	assert.ErrorIs(t, repo.Create(ctx, dup), models.ErrConflict)

	require.NoError(t, repo.UpdateTokens(ctx, account.ID, "b", "r"))
	got, err := repo.GetByProviderID(ctx, "github", "42")
	require.NoError(t, err)
	assert.Equal(t, "b", got.AccessToken)
	assert.Equal(t, "r", got.RefreshToken)
}

func TestAPIKeyRepository_Lifecycle(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	repo := NewAPIKeyRepository(testDB)
	user := seedUser(t, "frank")

	key := &models.APIKey{UserID: user.ID, Prefix: "sk_ini_abc", HashedKey: "hash", Name: "ci"}
	require.NoError(t, repo.Create(ctx, key))

	err := repo.Create(ctx, &models.APIKey{UserID: user.ID, Prefix: "sk_ini_abc", HashedKey: "h2", Name: "dup"})
	assert.ErrorIs(t, err, models.ErrConflict)

	byPrefix, err := repo.ListByPrefix(ctx, "sk_ini_abc")
	require.NoError(t, err)
	require.Len(t, byPrefix, 1)
	assert.Nil(t, byPrefix[0].LastUsed)

	require.NoError(t, repo.TouchLastUsed(ctx, key.ID))
	keys, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.NotNil(t, keys[0].LastUsed)

	require.NoError(t, repo.DeleteByPrefix(ctx, user.ID, "sk_ini_abc"))
	require.NoError(t, repo.DeleteByPrefix(ctx, user.ID, "sk_ini_abc"))
	keys, err = repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, keys)
}
