package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/Hayacku/initium/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) InvalidateLeaderboard(context.Context) { c.calls++ }

func TestNotesService_CreateBacklink_Duplicate(t *testing.T) {
	repo := &MockNotesRepository{
		CreateBacklinkFunc: func(ctx context.Context, b *models.Backlink) error {
			return models.ErrConflict
		},
	}
	svc := NewNotesService(repo, nil, slog.Default())

	link, created, err := svc.CreateBacklink(context.Background(), "user-1", "a", "b")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Nil(t, link)
}

func TestNotesService_Templates(t *testing.T) {
	predefined := []models.NoteTemplate{{Name: "Cornell Notes", Category: "Cornell"}}
	repo := &MockNotesRepository{
		ListTemplatesFunc: func(ctx context.Context, userID string) ([]*models.NoteTemplate, error) {
			return []*models.NoteTemplate{{ID: "t1", UserID: userID, Name: "Mine"}}, nil
		},
	}
	svc := NewNotesService(repo, predefined, slog.Default())

	pre, custom, err := svc.Templates(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, predefined, pre)
	require.Len(t, custom, 1)
	assert.Equal(t, "Mine", custom[0].Name)
}

func TestHabitsService_LogMood_EnergyBounds(t *testing.T) {
	svc := NewHabitsService(&MockHabitsRepository{}, slog.Default())

	for _, energy := range []int{0, 6} {
		err := svc.LogMood(context.Background(), &models.MoodEntry{UserID: "user-1", Mood: "happy", EnergyLevel: energy})
		assert.ErrorIs(t, err, models.ErrBadRequest, "energy %d", energy)
	}

	entry := &models.MoodEntry{UserID: "user-1", Mood: "happy", EnergyLevel: 5}
	require.NoError(t, svc.LogMood(context.Background(), entry))
	assert.Equal(t, "mood-1", entry.ID)
}

func TestHabitsService_MoodHistory_DefaultDays(t *testing.T) {
	var limit int
	repo := &MockHabitsRepository{
		ListMoodsFunc: func(ctx context.Context, userID string, l int) ([]*models.MoodEntry, error) {
			limit = l
			return []*models.MoodEntry{}, nil
		},
	}
	svc := NewHabitsService(repo, slog.Default())

	_, err := svc.MoodHistory(context.Background(), "user-1", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultMoodDays, limit)

	_, err = svc.MoodHistory(context.Background(), "user-1", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, limit)
}

func TestPomodoroService_Start_Defaults(t *testing.T) {
	var stored *models.PomodoroSession
	repo := &MockPomodoroRepository{
		CreateFunc: func(ctx context.Context, s *models.PomodoroSession) error {
			stored = s
			s.ID = "session-1"
			return nil
		},
	}
	svc := NewPomodoroService(repo, nil, slog.Default())

	session, err := svc.Start(context.Background(), "user-1", 0, nil, "")

	require.NoError(t, err)
	assert.Equal(t, "session-1", session.ID)
	assert.Equal(t, DefaultPomodoroMinutes, stored.Duration)
	assert.Equal(t, models.SessionTypeWork, stored.Type)
}

func TestPomodoroService_Start_InvalidType(t *testing.T) {
	svc := NewPomodoroService(&MockPomodoroRepository{}, nil, slog.Default())

	_, err := svc.Start(context.Background(), "user-1", 25, nil, "nap")

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestPomodoroService_Complete(t *testing.T) {
	var awarded int
	repo := &MockPomodoroRepository{
		CompleteFunc: func(ctx context.Context, userID, sessionID string, xp int) error {
			if sessionID != "session-1" {
				return models.ErrNotFound
			}
			awarded = xp
			return nil
		},
	}
	inv := &countingInvalidator{}
	svc := NewPomodoroService(repo, inv, slog.Default())

	xp, err := svc.Complete(context.Background(), "user-1", "session-1")
	require.NoError(t, err)
	assert.Equal(t, PomodoroXP, xp)
	assert.Equal(t, PomodoroXP, awarded)
	assert.Equal(t, 1, inv.calls)

	_, err = svc.Complete(context.Background(), "user-1", "other")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	assert.Equal(t, 1, inv.calls)
}

func TestPomodoroService_Stats(t *testing.T) {
	tests := []struct {
		name             string
		total, completed int
		rate             float64
	}{
		{name: "no sessions", total: 0, completed: 0, rate: 0},
		{name: "half done", total: 4, completed: 2, rate: 50},
		{name: "all done", total: 3, completed: 3, rate: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockPomodoroRepository{
				StatsFunc: func(ctx context.Context, userID string) (int, int, error) {
					return tt.total, tt.completed, nil
				},
			}
			stats, err := NewPomodoroService(repo, nil, slog.Default()).Stats(context.Background(), "user-1")
			require.NoError(t, err)
			assert.Equal(t, tt.total, stats.TotalSessions)
			assert.Equal(t, tt.completed, stats.CompletedSessions)
			assert.InDelta(t, tt.rate, stats.CompletionRate, 0.001)
		})
	}
}

type staticCatalog map[string]models.AvailableIntegration

func (c staticCatalog) Integration(id string) (models.AvailableIntegration, bool) {
	in, ok := c[id]
	return in, ok
}

func TestIntegrationsService_Connect(t *testing.T) {
	var stored *models.Integration
	repo := &MockIntegrationsRepository{
		CreateIntegrationFunc: func(ctx context.Context, in *models.Integration) error {
			stored = in
			in.ID = "integration-1"
			return nil
		},
	}
	catalog := staticCatalog{"notion": {ID: "notion", Name: "Notion"}}
	svc := NewIntegrationsService(repo, catalog, nil, slog.Default())

	_, err := svc.Connect(context.Background(), "user-1", "myspace")
	assert.ErrorIs(t, err, models.ErrUnknownProvider)

	in, err := svc.Connect(context.Background(), "user-1", "notion")
	require.NoError(t, err)
	assert.Equal(t, "integration-1", in.ID)
	assert.JSONEq(t, `{"mock": true}`, string(stored.Settings))
}

func TestIntegrationsService_DeleteWebhook_NotFound(t *testing.T) {
	repo := &MockIntegrationsRepository{
		DeleteWebhookFunc: func(ctx context.Context, userID, id string) error {
			return models.ErrNotFound
		},
	}
	svc := NewIntegrationsService(repo, staticCatalog{}, nil, slog.Default())

	err := svc.DeleteWebhook(context.Background(), "user-1", "webhook-1")

	assert.ErrorIs(t, err, models.ErrWebhookNotFound)
}

func TestIntegrationsService_CreateWebhook_EmptyEvents(t *testing.T) {
	svc := NewIntegrationsService(&MockIntegrationsRepository{}, staticCatalog{}, nil, slog.Default())
	hook := &models.Webhook{UserID: "user-1", Name: "ci", URL: "https://example.com/hook"}

	require.NoError(t, svc.CreateWebhook(context.Background(), hook))
	assert.NotNil(t, hook.Events)
}
