package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/Hayacku/initium/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCollections(t *testing.T) {
	assert.Equal(t, models.SyncCollections, ParseCollections(""))
	assert.Equal(t, []string{"quests", "habits"}, ParseCollections(" quests, bogus ,habits"))
	assert.Empty(t, ParseCollections("bogus"))
}

func TestSyncService_Push_StampsDocuments(t *testing.T) {
	var got []models.Document
	repo := &MockSyncRepository{
		UpsertFunc: func(ctx context.Context, userID, collection string, docs []models.Document, at time.Time) (int, error) {
			assert.Equal(t, "quests", collection)
			got = docs
			return len(docs), nil
		},
	}
	svc := NewSyncService(repo, slog.Default())

	n, err := svc.Push(context.Background(), "user-1", "quests", []models.Document{
		{"id": "q1", "title": "Slay"},
		{"title": "No id"},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, got, 2)
	for _, doc := range got {
		assert.Equal(t, "user-1", doc["user_id"])
		assert.NotEmpty(t, doc["synced_at"])
		assert.NotEmpty(t, doc.ID())
	}
	assert.Equal(t, "q1", got[0].ID())
}

func TestSyncService_Push_NormalizesNumericID(t *testing.T) {
	var got []models.Document
	repo := &MockSyncRepository{
		UpsertFunc: func(ctx context.Context, userID, collection string, docs []models.Document, at time.Time) (int, error) {
			got = docs
			return len(docs), nil
		},
	}
	svc := NewSyncService(repo, slog.Default())

	_, err := svc.Push(context.Background(), "user-1", "tasks", []models.Document{{"id": float64(5)}})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "5", got[0]["id"])
}

func TestSyncService_Push_RejectsUnusableIDs(t *testing.T) {
	tests := []struct {
		name string
		id   any
	}{
		{"null", nil},
		{"bool", true},
		{"object", map[string]any{"k": "v"}},
		{"array", []any{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockSyncRepository{
				UpsertFunc: func(ctx context.Context, userID, collection string, docs []models.Document, at time.Time) (int, error) {
					t.Fatal("nothing should be written")
					return 0, nil
				},
			}
			svc := NewSyncService(repo, slog.Default())

			_, err := svc.Push(context.Background(), "user-1", "tasks", []models.Document{
				{"id": "ok"},
				{"id": tt.id, "title": "bad"},
			})

			assert.ErrorIs(t, err, models.ErrInvalidDocumentID)
			assert.ErrorIs(t, err, models.ErrBadRequest)
			assert.Contains(t, err.Error(), "tasks document 1")
		})
	}
}

func TestSyncService_Migrate_RejectsBeforeWriting(t *testing.T) {
	repo := &MockSyncRepository{
		UpsertFunc: func(ctx context.Context, userID, collection string, docs []models.Document, at time.Time) (int, error) {
			t.Fatalf("unexpected write to %s", collection)
			return 0, nil
		},
	}
	svc := NewSyncService(repo, slog.Default())

	_, _, err := svc.Migrate(context.Background(), "user-1", map[string][]models.Document{
		"quests": {{"id": "q1"}},
		"habits": {{"id": false}},
	})

	assert.ErrorIs(t, err, models.ErrInvalidDocumentID)
}

func TestSyncService_Push_InvalidCollection(t *testing.T) {
	svc := NewSyncService(&MockSyncRepository{}, slog.Default())

	_, err := svc.Push(context.Background(), "user-1", "users", nil)

	assert.ErrorIs(t, err, models.ErrInvalidCollection)
	assert.ErrorIs(t, err, models.ErrBadRequest)
	var ice *InvalidCollectionError
	require.True(t, errors.As(err, &ice))
	assert.Contains(t, ice.Error(), "Allowed: quests, habits")
}

func TestSyncService_Pull(t *testing.T) {
	repo := &MockSyncRepository{
		ListFunc: func(ctx context.Context, userID, collection string) ([]models.Document, error) {
			return []models.Document{{"id": collection + "-1"}}, nil
		},
	}
	svc := NewSyncService(repo, slog.Default())

	result, err := svc.Pull(context.Background(), "user-1", []string{"quests", "notes"})

	require.NoError(t, err)
	assert.Len(t, result.Data, 2)
	assert.Equal(t, "notes-1", result.Data["notes"][0].ID())
	assert.False(t, result.LastSync.IsZero())
}

func TestSyncService_Migrate(t *testing.T) {
	svc := NewSyncService(&MockSyncRepository{}, slog.Default())

	total, results, err := svc.Migrate(context.Background(), "user-1", map[string][]models.Document{
		"quests": {{"id": "q1"}, {"id": "q2"}},
		"habits": {{"id": "h1"}},
		"users":  {{"id": "x"}},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.True(t, results["quests"].Success)
	require.NotNil(t, results["quests"].SyncedCount)
	assert.Equal(t, 2, *results["quests"].SyncedCount)
	assert.Equal(t, "Synced 2 documents", results["quests"].Message)
	assert.False(t, results["users"].Success)
	assert.Nil(t, results["users"].SyncedCount)
	assert.Equal(t, "Invalid collection name", results["users"].Message)
}

func TestSyncService_Clear(t *testing.T) {
	repo := &MockSyncRepository{
		ClearFunc: func(ctx context.Context, userID, collection string) (int64, error) {
			if collection == "quests" {
				return 3, nil
			}
			return 0, nil
		},
	}
	svc := NewSyncService(repo, slog.Default())

	counts, err := svc.Clear(context.Background(), "user-1", []string{"quests", "habits"})

	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"quests": 3, "habits": 0}, counts)
}
