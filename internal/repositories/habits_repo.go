package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Hayacku/initium/internal/database"
	"github.com/Hayacku/initium/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HabitsRepository struct {
	pool *pgxpool.Pool
}

func NewHabitsRepository(db *database.DB) *HabitsRepository {
	return &HabitsRepository{pool: db.Pool}
}

func (r *HabitsRepository) CreateMood(ctx context.Context, m *models.MoodEntry) error {
	m.ID = uuid.New().String()
	if m.Date.IsZero() {
		m.Date = time.Now().UTC()
	}

	query := `
		INSERT INTO mood_entries (id, user_id, habit_id, mood, energy_level, notes, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query, m.ID, m.UserID, m.HabitID, m.Mood, m.EnergyLevel, m.Notes, m.Date)
	if err != nil {
		return fmt.Errorf("failed to log mood: %w", database.MapPostgresError(err))
	}
	return nil
}

func scanMoodRow(scanner rowScanner) (*models.MoodEntry, error) {
	var m models.MoodEntry
	if err := scanner.Scan(&m.ID, &m.UserID, &m.HabitID, &m.Mood, &m.EnergyLevel, &m.Notes, &m.Date); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &m, nil
}

// ListMoods returns the newest entries first, at most limit of them
func (r *HabitsRepository) ListMoods(ctx context.Context, userID string, limit int) ([]*models.MoodEntry, error) {
	query := `
		SELECT id, user_id, habit_id, mood, energy_level, notes, date
		FROM mood_entries
		WHERE user_id = $1
		ORDER BY date DESC
		LIMIT $2`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list moods: %w", err)
	}
	return collect(rows, scanMoodRow)
}

func (r *HabitsRepository) CreateMetric(ctx context.Context, m *models.HabitMetric) error {
	m.ID = uuid.New().String()
	if m.Date.IsZero() {
		m.Date = time.Now().UTC()
	}

	query := `
		INSERT INTO habit_metrics (id, user_id, habit_id, metric_type, value, unit, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query, m.ID, m.UserID, m.HabitID, m.MetricType, m.Value, m.Unit, m.Date)
	if err != nil {
		return fmt.Errorf("failed to add metric: %w", database.MapPostgresError(err))
	}
	return nil
}

func scanMetricRow(scanner rowScanner) (*models.HabitMetric, error) {
	var m models.HabitMetric
	if err := scanner.Scan(&m.ID, &m.UserID, &m.HabitID, &m.MetricType, &m.Value, &m.Unit, &m.Date); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &m, nil
}

func (r *HabitsRepository) ListMetrics(ctx context.Context, userID, habitID string, limit int) ([]*models.HabitMetric, error) {
	query := `
		SELECT id, user_id, habit_id, metric_type, value, unit, date
		FROM habit_metrics
		WHERE user_id = $1 AND habit_id = $2
		ORDER BY date DESC
		LIMIT $3`
	rows, err := r.pool.Query(ctx, query, userID, habitID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics: %w", err)
	}
	return collect(rows, scanMetricRow)
}
