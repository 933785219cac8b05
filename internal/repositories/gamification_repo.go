package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Hayacku/initium/internal/database"
	"github.com/Hayacku/initium/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const achievementColumns = `id, code, name, description, icon, category, requirement,
	reward_xp, reward_coins, rarity, secret`

type AchievementRepository struct {
	pool *pgxpool.Pool
}

func NewAchievementRepository(db *database.DB) *AchievementRepository {
	return &AchievementRepository{pool: db.Pool}
}

func scanAchievementRow(scanner rowScanner) (*models.Achievement, error) {
	var a models.Achievement
	err := scanner.Scan(&a.ID, &a.Code, &a.Name, &a.Description, &a.Icon, &a.Category,
		&a.Requirement, &a.RewardXP, &a.RewardCoins, &a.Rarity, &a.Secret)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &a, nil
}

// SeedIfEmpty inserts the catalogue when the table has no rows. Existing
// codes are left untouched so concurrent seeders do not collide.
func (r *AchievementRepository) SeedIfEmpty(ctx context.Context, achievements []models.Achievement) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM achievements`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count achievements: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, a := range achievements {
		requirement := a.Requirement
		if requirement == nil {
			requirement = map[string]int{}
		}
		batch.Queue(`
			INSERT INTO achievements (`+achievementColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO NOTHING`,
			a.ID, a.Code, a.Name, a.Description, a.Icon, a.Category, requirement,
			a.RewardXP, a.RewardCoins, a.Rarity, a.Secret)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range achievements {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to seed achievement: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (r *AchievementRepository) List(ctx context.Context) ([]*models.Achievement, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+achievementColumns+` FROM achievements ORDER BY category, reward_xp, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	return collect(rows, scanAchievementRow)
}

func scanUserAchievementRow(scanner rowScanner) (*models.UserAchievement, error) {
	var ua models.UserAchievement
	if err := scanner.Scan(&ua.ID, &ua.UserID, &ua.AchievementID, &ua.UnlockedAt, &ua.Progress); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &ua, nil
}

func (r *AchievementRepository) ListUnlocked(ctx context.Context, userID string) ([]*models.UserAchievement, error) {
	query := `
		SELECT id, user_id, achievement_id, unlocked_at, progress
		FROM user_achievements
		WHERE user_id = $1
		ORDER BY unlocked_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlocked achievements: %w", err)
	}
	return collect(rows, scanUserAchievementRow)
}

const guildColumns = `id, name, description, icon, owner_id, member_ids, total_xp, level, created_at`

type GuildRepository struct {
	pool *pgxpool.Pool
}

func NewGuildRepository(db *database.DB) *GuildRepository {
	return &GuildRepository{pool: db.Pool}
}

func scanGuildRow(scanner rowScanner) (*models.Guild, error) {
	var g models.Guild
	err := scanner.Scan(&g.ID, &g.Name, &g.Description, &g.Icon, &g.OwnerID,
		&g.MemberIDs, &g.TotalXP, &g.Level, &g.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &g, nil
}

func (r *GuildRepository) Create(ctx context.Context, guild *models.Guild) error {
	guild.ID = uuid.New().String()
	guild.CreatedAt = time.Now().UTC()
	if guild.Level == 0 {
		guild.Level = 1
	}

	query := `
		INSERT INTO guilds (` + guildColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, query, guild.ID, guild.Name, guild.Description, guild.Icon, guild.OwnerID,
		textArray(guild.MemberIDs), guild.TotalXP, guild.Level, guild.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create guild: %w", database.MapPostgresError(err))
	}
	return nil
}

func (r *GuildRepository) List(ctx context.Context, limit int) ([]*models.Guild, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+guildColumns+` FROM guilds ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}
	return collect(rows, scanGuildRow)
}

func (r *GuildRepository) GetByID(ctx context.Context, id string) (*models.Guild, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrNotFound
	}
	return scanGuildRow(r.pool.QueryRow(ctx, `SELECT `+guildColumns+` FROM guilds WHERE id = $1`, id))
}

// AddMember appends userID to member_ids. It reports false when the user
// was already a member.
func (r *GuildRepository) AddMember(ctx context.Context, id, userID string) (bool, error) {
	query := `
		UPDATE guilds SET member_ids = array_append(member_ids, $2)
		WHERE id = $1 AND NOT ($2 = ANY(member_ids))`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to join guild: %w", database.MapPostgresError(err))
	}
	return tag.RowsAffected() == 1, nil
}
