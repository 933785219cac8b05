package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Hayacku/initium/internal/cache"
	"github.com/Hayacku/initium/internal/models"
)

const (
	// MaxLeaderboardSize is the largest leaderboard a client can ask for
	MaxLeaderboardSize = 100
	// DefaultGuildIcon is used when a guild is created without one
	DefaultGuildIcon = "🛡️"

	leaderboardCacheKey = "leaderboard:top"
	guildListLimit      = 1000
)

// AchievementRepository defines achievement storage
type AchievementRepository interface {
	SeedIfEmpty(ctx context.Context, achievements []models.Achievement) (int, error)
	List(ctx context.Context) ([]*models.Achievement, error)
	ListUnlocked(ctx context.Context, userID string) ([]*models.UserAchievement, error)
}

// LeaderboardRepository ranks users by XP
type LeaderboardRepository interface {
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	CountWithMoreXP(ctx context.Context, xp int) (int, error)
}

// GuildRepository defines guild storage
type GuildRepository interface {
	Create(ctx context.Context, guild *models.Guild) error
	List(ctx context.Context, limit int) ([]*models.Guild, error)
	GetByID(ctx context.Context, id string) (*models.Guild, error)
	AddMember(ctx context.Context, id, userID string) (bool, error)
}

// GamificationService serves achievements, the leaderboard and guilds
type GamificationService struct {
	achievements AchievementRepository
	ranking      LeaderboardRepository
	guilds       GuildRepository
	catalogue    []models.Achievement
	cache        cache.Client
	cacheTTL     time.Duration
	logger       *slog.Logger
}

func NewGamificationService(achievements AchievementRepository, ranking LeaderboardRepository, guilds GuildRepository,
	catalogue []models.Achievement, c cache.Client, cacheTTL time.Duration, logger *slog.Logger) *GamificationService {
	return &GamificationService{
		achievements: achievements,
		ranking:      ranking,
		guilds:       guilds,
		catalogue:    catalogue,
		cache:        c,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

// SeedAchievements stores the catalogue when the table is empty
func (s *GamificationService) SeedAchievements(ctx context.Context) error {
	n, err := s.achievements.SeedIfEmpty(ctx, s.catalogue)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("seeded achievements", slog.Int("count", n))
	}
	return nil
}

// Achievements lists every achievement, seeding the catalogue on first use
func (s *GamificationService) Achievements(ctx context.Context) ([]*models.Achievement, error) {
	if err := s.SeedAchievements(ctx); err != nil {
		s.logger.Error("failed to seed achievements", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	list, err := s.achievements.List(ctx)
	if err != nil {
		s.logger.Error("failed to list achievements", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return list, nil
}

// UserAchievements returns the caller's unlocked achievements and the size
// of the catalogue.
func (s *GamificationService) UserAchievements(ctx context.Context, userID string) ([]*models.UserAchievement, int, error) {
	unlocked, err := s.achievements.ListUnlocked(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list unlocked achievements", slog.String("user_id", userID), slog.Any("error", err))
		return nil, 0, models.ErrInternalServer
	}
	return unlocked, len(s.catalogue), nil
}

// Leaderboard returns the top users. The full top list is cached once and
// sliced per request.
func (s *GamificationService) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit < 1 || limit > MaxLeaderboardSize {
		limit = MaxLeaderboardSize
	}

	var top []models.LeaderboardEntry
	if s.cache != nil {
		err := cache.GetJSON(ctx, s.cache, leaderboardCacheKey, &top)
		if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("leaderboard cache read failed", slog.Any("error", err))
		}
		if err == nil {
			return head(top, limit), nil
		}
	}

	top, err := s.ranking.Leaderboard(ctx, MaxLeaderboardSize)
	if err != nil {
		s.logger.Error("failed to load leaderboard", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, leaderboardCacheKey, top, s.cacheTTL); err != nil {
			s.logger.Warn("leaderboard cache write failed", slog.Any("error", err))
		}
	}
	return head(top, limit), nil
}

func head(entries []models.LeaderboardEntry, n int) []models.LeaderboardEntry {
	if entries == nil {
		return []models.LeaderboardEntry{}
	}
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}

// InvalidateLeaderboard drops the cached ranking after an XP change
func (s *GamificationService) InvalidateLeaderboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, leaderboardCacheKey); err != nil {
		s.logger.Warn("leaderboard cache invalidation failed", slog.Any("error", err))
	}
}

// MyRank is one plus the number of users with strictly more XP
func (s *GamificationService) MyRank(ctx context.Context, user *models.User) (*models.Rank, error) {
	higher, err := s.ranking.CountWithMoreXP(ctx, user.XP)
	if err != nil {
		s.logger.Error("failed to compute rank", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return &models.Rank{Rank: higher + 1, Username: user.Username, XP: user.XP, Level: user.Level}, nil
}

// CreateGuild makes the caller owner and first member
func (s *GamificationService) CreateGuild(ctx context.Context, ownerID, name, description, icon string) (*models.Guild, error) {
	if icon = strings.TrimSpace(icon); icon == "" {
		icon = DefaultGuildIcon
	}
	guild := &models.Guild{
		Name:        strings.TrimSpace(name),
		Description: description,
		Icon:        icon,
		OwnerID:     ownerID,
		MemberIDs:   []string{ownerID},
	}
	if err := s.guilds.Create(ctx, guild); err != nil {
		s.logger.Error("failed to create guild", slog.String("user_id", ownerID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return guild, nil
}

func (s *GamificationService) Guilds(ctx context.Context) ([]*models.Guild, error) {
	guilds, err := s.guilds.List(ctx, guildListLimit)
	if err != nil {
		s.logger.Error("failed to list guilds", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return guilds, nil
}

// JoinGuild adds the caller to the guild. joined is false when the caller
// was already a member.
func (s *GamificationService) JoinGuild(ctx context.Context, guildID, userID string) (joined bool, err error) {
	guild, err := s.guilds.GetByID(ctx, guildID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, models.ErrGuildNotFound
		}
		s.logger.Error("failed to load guild", slog.String("guild_id", guildID), slog.Any("error", err))
		return false, models.ErrInternalServer
	}
	if guild.HasMember(userID) {
		return false, nil
	}

	joined, err = s.guilds.AddMember(ctx, guildID, userID)
	if err != nil {
		s.logger.Error("failed to join guild", slog.String("guild_id", guildID), slog.Any("error", err))
		return false, models.ErrInternalServer
	}
	return joined, nil
}
