package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Hayacku/initium/internal/database"
	"github.com/Hayacku/initium/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PomodoroRepository struct {
	db *database.DB
}

func NewPomodoroRepository(db *database.DB) *PomodoroRepository {
	return &PomodoroRepository{db: db}
}

func (r *PomodoroRepository) Create(ctx context.Context, s *models.PomodoroSession) error {
	s.ID = uuid.New().String()
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO pomodoro_sessions (id, user_id, task_id, duration, type, completed, started_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)`
	_, err := r.db.Pool.Exec(ctx, query, s.ID, s.UserID, s.TaskID, s.Duration, s.Type, s.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", database.MapPostgresError(err))
	}
	return nil
}

// Complete marks the caller's session completed and credits xp to the user
// in one transaction. A session the user does not own is models.ErrNotFound.
func (r *PomodoroRepository) Complete(ctx context.Context, userID, sessionID string, xp int) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return models.ErrNotFound
	}

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE pomodoro_sessions SET completed = TRUE, completed_at = $3
			WHERE id = $1 AND user_id = $2`,
			sessionID, userID, time.Now().UTC())
		if err != nil {
			return database.MapPostgresError(err)
		}
		if tag.RowsAffected() == 0 {
			return models.ErrNotFound
		}

		return addXP(ctx, tx, userID, xp)
	})
}

func (r *PomodoroRepository) Stats(ctx context.Context, userID string) (total, completed int, err error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE completed)
		FROM pomodoro_sessions
		WHERE user_id = $1`
	if err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&total, &completed); err != nil {
		return 0, 0, fmt.Errorf("failed to load pomodoro stats: %w", err)
	}
	return total, completed, nil
}
