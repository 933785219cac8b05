//go:build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/Hayacku/initium/internal/catalog"
	"github.com/Hayacku/initium/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAchievementRepository_SeedOnce(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	repo := NewAchievementRepository(testDB)

	cat, err := catalog.Load()
	require.NoError(t, err)

	inserted, err := repo.SeedIfEmpty(ctx, cat.Achievements)
	require.NoError(t, err)
	assert.Equal(t, len(cat.Achievements), inserted)

	inserted, err = repo.SeedIfEmpty(ctx, cat.Achievements)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(cat.Achievements))

	user := seedUser(t, "gina")
	_, err = testDB.Pool.Exec(ctx, `
		INSERT INTO user_achievements (id, user_id, achievement_id, unlocked_at, progress)
		VALUES ($1, $2, $3, $4, 100)`, uuid.New().String(), user.ID, all[0].ID, time.Now().UTC())
	require.NoError(t, err)
	unlocked, err := repo.ListUnlocked(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, unlocked, 1)
}

func TestGuildRepository_Membership(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	repo := NewGuildRepository(testDB)
	owner := seedUser(t, "owner")
	member := seedUser(t, "member")

	guild := &models.Guild{Name: "Focus", Icon: "🛡️", OwnerID: owner.ID, MemberIDs: []string{owner.ID}}
	require.NoError(t, repo.Create(ctx, guild))

	joined, err := repo.AddMember(ctx, guild.ID, member.ID)
	require.NoError(t, err)
	assert.True(t, joined)

	joined, err = repo.AddMember(ctx, guild.ID, member.ID)
	require.NoError(t, err)
	assert.False(t, joined)

	got, err := repo.GetByID(ctx, guild.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{owner.ID, member.ID}, got.MemberIDs)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestNotesRepository_BacklinksAndTemplates(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	repo := NewNotesRepository(testDB)
	user := seedUser(t, "hank")

	require.NoError(t, repo.CreateBacklink(ctx, &models.Backlink{UserID: user.ID, SourceID: "a", TargetID: "b"}))
	err := repo.CreateBacklink(ctx, &models.Backlink{UserID: user.ID, SourceID: "a", TargetID: "b"})
	assert.ErrorIs(t, err, models.ErrConflict)

	links, err := repo.BacklinksTo(ctx, user.ID, "b")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "note", links[0].SourceType)

	require.NoError(t, repo.CreateTemplate(ctx, &models.NoteTemplate{UserID: user.ID, Name: "Daily", Content: "# Day", Category: "journal"}))
	templates, err := repo.ListTemplates(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.JSONEq(t, `{}`, string(templates[0].Properties))
}

func TestHabitsRepository_NewestFirst(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	repo := NewHabitsRepository(testDB)
	user := seedUser(t, "ivy")

	older := time.Now().Add(-48 * time.Hour).UTC()
	require.NoError(t, repo.CreateMood(ctx, &models.MoodEntry{UserID: user.ID, Mood: "tired", EnergyLevel: 2, Date: older}))
	require.NoError(t, repo.CreateMood(ctx, &models.MoodEntry{UserID: user.ID, Mood: "great", EnergyLevel: 5}))

	moods, err := repo.ListMoods(ctx, user.ID, 1)
	require.NoError(t, err)
	require.Len(t, moods, 1)
	assert.Equal(t, "great", moods[0].Mood)

	err = repo.CreateMood(ctx, &models.MoodEntry{UserID: user.ID, Mood: "off", EnergyLevel: 9})
	assert.ErrorIs(t, err, models.ErrBadRequest)

	require.NoError(t, repo.CreateMetric(ctx, &models.HabitMetric{UserID: user.ID, HabitID: "run", MetricType: "distance", Value: 5.2, Unit: "km"}))
	metrics, err := repo.ListMetrics(ctx, user.ID, "run", 100)
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.InDelta(t, 5.2, metrics[0].Value, 0.001)
}

func TestPomodoroRepository_CompleteAwardsXP(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	repo := NewPomodoroRepository(testDB)
	user := seedUser(t, "jack")
	other := seedUser(t, "kate")

	session := &models.PomodoroSession{UserID: user.ID, Duration: 25, Type: models.SessionTypeWork}
	require.NoError(t, repo.Create(ctx, session))
	require.NoError(t, repo.Create(ctx, &models.PomodoroSession{UserID: user.ID, Duration: 5, Type: models.SessionTypeShortBreak}))

	assert.ErrorIs(t, repo.Complete(ctx, other.ID, session.ID, 10), models.ErrNotFound)
	require.NoError(t, repo.Complete(ctx, user.ID, session.ID, 10))

	got, err := NewUserRepository(testDB).GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.XP)

	total, completed, err := repo.Stats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, completed)
}

func TestIntegrationsRepository_Webhooks(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	repo := NewIntegrationsRepository(testDB)
	user := seedUser(t, "liam")
	stranger := seedUser(t, "mia")

	hook := &models.Webhook{UserID: user.ID, Name: "ci", URL: "https://example.com/hook", Events: []string{"quest.completed"}, Active: true}
	require.NoError(t, repo.CreateWebhook(ctx, hook))

	hooks, err := repo.ListWebhooks(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, hooks, 1)
	assert.Equal(t, []string{"quest.completed"}, hooks[0].Events)

	assert.ErrorIs(t, repo.DeleteWebhook(ctx, stranger.ID, hook.ID), models.ErrNotFound)
	require.NoError(t, repo.DeleteWebhook(ctx, user.ID, hook.ID))

	require.NoError(t, repo.CreateIntegration(ctx, &models.Integration{UserID: user.ID, Provider: "notion", Active: true}))
	connected, err := repo.ListIntegrations(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, connected, 1)
	assert.JSONEq(t, `{}`, string(connected[0].Settings))
}

func TestSyncRepository_UpsertMerges(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	repo := NewSyncRepository(testDB)
	user := seedUser(t, "nora")

	n, err := repo.Upsert(ctx, user.ID, "tasks", []models.Document{
		{"id": "t1", "title": "write", "done": false},
	}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = repo.Upsert(ctx, user.ID, "tasks", []models.Document{{"id": "t1", "done": true}}, time.Now())
	require.NoError(t, err)

	docs, err := repo.List(ctx, user.ID, "tasks")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "write", docs[0]["title"])
	assert.Equal(t, true, docs[0]["done"])

	cleared, err := repo.Clear(ctx, user.ID, "tasks")
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)
}
