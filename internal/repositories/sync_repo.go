package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Hayacku/initium/internal/database"
	"github.com/Hayacku/initium/internal/models"
	"github.com/jackc/pgx/v5"
)

// SyncRepository stores schemaless client documents keyed by
// (user, collection, id).
type SyncRepository struct {
	db *database.DB
}

func NewSyncRepository(db *database.DB) *SyncRepository {
	return &SyncRepository{db: db}
}

// Upsert writes docs into collection in one transaction. An existing
// document is merged key by key, later values winning. Every document must
// already carry an id.
func (r *SyncRepository) Upsert(ctx context.Context, userID, collection string, docs []models.Document, syncedAt time.Time) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO sync_documents (user_id, collection, id, data, synced_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, collection, id)
		DO UPDATE SET data = sync_documents.data || EXCLUDED.data, synced_at = EXCLUDED.synced_at`

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, doc := range docs {
			batch.Queue(query, userID, collection, doc.ID(), map[string]any(doc), syncedAt)
		}
		results := tx.SendBatch(ctx, batch)
		for range docs {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return database.MapPostgresError(err)
			}
		}
		return results.Close()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert %s documents: %w", collection, err)
	}
	return len(docs), nil
}

// List returns the caller's documents in collection ordered by id
func (r *SyncRepository) List(ctx context.Context, userID, collection string) ([]models.Document, error) {
	query := `
		SELECT data
		FROM sync_documents
		WHERE user_id = $1 AND collection = $2
		ORDER BY id`
	rows, err := r.db.Pool.Query(ctx, query, userID, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s documents: %w", collection, err)
	}
	defer rows.Close()

	docs := make([]models.Document, 0)
	for rows.Next() {
		var doc map[string]any
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, models.Document(doc))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return docs, nil
}

// Clear deletes every document the caller has in collection
func (r *SyncRepository) Clear(ctx context.Context, userID, collection string) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM sync_documents WHERE user_id = $1 AND collection = $2`, userID, collection)
	if err != nil {
		return 0, fmt.Errorf("failed to clear %s documents: %w", collection, err)
	}
	return tag.RowsAffected(), nil
}
