package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Hayacku/initium/internal/models"
)

const (
	DefaultPomodoroMinutes = 25
	// PomodoroXP is credited for every completed session
	PomodoroXP = 10
)

// PomodoroRepository defines session storage
type PomodoroRepository interface {
	Create(ctx context.Context, s *models.PomodoroSession) error
	Complete(ctx context.Context, userID, sessionID string, xp int) error
	Stats(ctx context.Context, userID string) (total, completed int, err error)
}

// LeaderboardInvalidator is told when a user's XP changes
type LeaderboardInvalidator interface {
	InvalidateLeaderboard(ctx context.Context)
}

type PomodoroService struct {
	repo        PomodoroRepository
	leaderboard LeaderboardInvalidator
	logger      *slog.Logger
}

func NewPomodoroService(repo PomodoroRepository, leaderboard LeaderboardInvalidator, logger *slog.Logger) *PomodoroService {
	return &PomodoroService{repo: repo, leaderboard: leaderboard, logger: logger}
}

func validSessionType(t string) bool {
	switch t {
	case models.SessionTypeWork, models.SessionTypeShortBreak, models.SessionTypeLongBreak:
		return true
	}
	return false
}

// Start opens a session. Zero values fall back to a 25 minute work session.
func (s *PomodoroService) Start(ctx context.Context, userID string, duration int, taskID *string, sessionType string) (*models.PomodoroSession, error) {
	if duration == 0 {
		duration = DefaultPomodoroMinutes
	}
	if duration < 0 {
		return nil, fmt.Errorf("duration must be positive: %w", models.ErrBadRequest)
	}
	if sessionType == "" {
		sessionType = models.SessionTypeWork
	}
	if !validSessionType(sessionType) {
		return nil, fmt.Errorf("session_type must be one of work, short_break, long_break: %w", models.ErrBadRequest)
	}

	session := &models.PomodoroSession{UserID: userID, TaskID: taskID, Duration: duration, Type: sessionType}
	if err := s.repo.Create(ctx, session); err != nil {
		s.logger.Error("failed to start pomodoro", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return session, nil
}

// Complete closes the caller's session and returns the XP credited
func (s *PomodoroService) Complete(ctx context.Context, userID, sessionID string) (int, error) {
	if err := s.repo.Complete(ctx, userID, sessionID, PomodoroXP); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return 0, models.ErrSessionNotFound
		}
		s.logger.Error("failed to complete pomodoro", slog.String("user_id", userID), slog.Any("error", err))
		return 0, models.ErrInternalServer
	}
	if s.leaderboard != nil {
		s.leaderboard.InvalidateLeaderboard(ctx)
	}
	return PomodoroXP, nil
}

func (s *PomodoroService) Stats(ctx context.Context, userID string) (*models.PomodoroStats, error) {
	total, completed, err := s.repo.Stats(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load pomodoro stats", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	stats := &models.PomodoroStats{TotalSessions: total, CompletedSessions: completed}
	if total > 0 {
		stats.CompletionRate = float64(completed) / float64(total) * 100
	}
	return stats, nil
}
