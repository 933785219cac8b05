package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Hayacku/initium/internal/database"
	"github.com/Hayacku/initium/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotesRepository struct {
	pool *pgxpool.Pool
}

func NewNotesRepository(db *database.DB) *NotesRepository {
	return &NotesRepository{pool: db.Pool}
}

func scanBacklinkRow(scanner rowScanner) (*models.Backlink, error) {
	var b models.Backlink
	err := scanner.Scan(&b.ID, &b.UserID, &b.SourceID, &b.TargetID, &b.SourceType, &b.TargetType, &b.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &b, nil
}

// BacklinksTo lists the caller's links pointing at targetID
func (r *NotesRepository) BacklinksTo(ctx context.Context, userID, targetID string) ([]*models.Backlink, error) {
	query := `
		SELECT id, user_id, source_id, target_id, source_type, target_type, created_at
		FROM backlinks
		WHERE user_id = $1 AND target_id = $2
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list backlinks: %w", err)
	}
	return collect(rows, scanBacklinkRow)
}

// CreateBacklink inserts a link. A duplicate (user, source, target) returns
// models.ErrConflict.
func (r *NotesRepository) CreateBacklink(ctx context.Context, b *models.Backlink) error {
	b.ID = uuid.New().String()
	b.CreatedAt = time.Now().UTC()
	if b.SourceType == "" {
		b.SourceType = "note"
	}
	if b.TargetType == "" {
		b.TargetType = "note"
	}

	query := `
		INSERT INTO backlinks (id, user_id, source_id, target_id, source_type, target_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query, b.ID, b.UserID, b.SourceID, b.TargetID, b.SourceType, b.TargetType, b.CreatedAt)
	if err != nil {
		return database.MapPostgresError(err)
	}
	return nil
}

func scanTemplateRow(scanner rowScanner) (*models.NoteTemplate, error) {
	var t models.NoteTemplate
	var createdAt time.Time
	err := scanner.Scan(&t.ID, &t.UserID, &t.Name, &t.Content, &t.Category, &t.Properties, &createdAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	t.CreatedAt = &createdAt
	return &t, nil
}

func (r *NotesRepository) ListTemplates(ctx context.Context, userID string) ([]*models.NoteTemplate, error) {
	query := `
		SELECT id, user_id, name, content, category, properties, created_at
		FROM note_templates
		WHERE user_id = $1
		ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return collect(rows, scanTemplateRow)
}

func (r *NotesRepository) CreateTemplate(ctx context.Context, t *models.NoteTemplate) error {
	t.ID = uuid.New().String()
	now := time.Now().UTC()
	t.CreatedAt = &now
	if len(t.Properties) == 0 {
		t.Properties = json.RawMessage(`{}`)
	}

	query := `
		INSERT INTO note_templates (id, user_id, name, content, category, properties, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query, t.ID, t.UserID, t.Name, t.Content, t.Category, t.Properties, now)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", database.MapPostgresError(err))
	}
	return nil
}
