package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Hayacku/initium/internal/models"
)

const (
	MinEnergyLevel = 1
	MaxEnergyLevel = 5

	// DefaultMoodDays is how many mood entries are returned by default
	DefaultMoodDays = 30

	metricListLimit = 1000
)

// HabitsRepository defines mood and metric storage
type HabitsRepository interface {
	CreateMood(ctx context.Context, m *models.MoodEntry) error
	ListMoods(ctx context.Context, userID string, limit int) ([]*models.MoodEntry, error)
	CreateMetric(ctx context.Context, m *models.HabitMetric) error
	ListMetrics(ctx context.Context, userID, habitID string, limit int) ([]*models.HabitMetric, error)
}

type HabitsService struct {
	repo   HabitsRepository
	logger *slog.Logger
}

func NewHabitsService(repo HabitsRepository, logger *slog.Logger) *HabitsService {
	return &HabitsService{repo: repo, logger: logger}
}

func (s *HabitsService) LogMood(ctx context.Context, entry *models.MoodEntry) error {
	if entry.EnergyLevel < MinEnergyLevel || entry.EnergyLevel > MaxEnergyLevel {
		return fmt.Errorf("energy_level must be between %d and %d: %w", MinEnergyLevel, MaxEnergyLevel, models.ErrBadRequest)
	}
	if err := s.repo.CreateMood(ctx, entry); err != nil {
		s.logger.Error("failed to log mood", slog.String("user_id", entry.UserID), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

// MoodHistory returns at most days entries, newest first
func (s *HabitsService) MoodHistory(ctx context.Context, userID string, days int) ([]*models.MoodEntry, error) {
	if days < 1 {
		days = DefaultMoodDays
	}
	moods, err := s.repo.ListMoods(ctx, userID, days)
	if err != nil {
		s.logger.Error("failed to list moods", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return moods, nil
}

func (s *HabitsService) LogMetric(ctx context.Context, metric *models.HabitMetric) error {
	if err := s.repo.CreateMetric(ctx, metric); err != nil {
		s.logger.Error("failed to log metric", slog.String("user_id", metric.UserID), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

func (s *HabitsService) Metrics(ctx context.Context, userID, habitID string) ([]*models.HabitMetric, error) {
	metrics, err := s.repo.ListMetrics(ctx, userID, habitID, metricListLimit)
	if err != nil {
		s.logger.Error("failed to list metrics", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return metrics, nil
}
