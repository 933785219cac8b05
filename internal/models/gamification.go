package models

import "time"

// Achievement is an entry of the achievement catalogue
type Achievement struct {
	ID          string         `json:"id" yaml:"-"`
	Code        string         `json:"code" yaml:"code"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Icon        string         `json:"icon" yaml:"icon"`
	Category    string         `json:"category" yaml:"category"`
	Requirement map[string]int `json:"requirement" yaml:"requirement"`
	RewardXP    int            `json:"reward_xp" yaml:"reward_xp"`
	RewardCoins int            `json:"reward_coins" yaml:"reward_coins"`
	Rarity      string         `json:"rarity" yaml:"rarity"`
	Secret      bool           `json:"secret" yaml:"secret"`
}

// UserAchievement records an unlocked achievement
type UserAchievement struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
	Progress      int       `json:"progress"`
}

// LeaderboardEntry is one ranked row of the global leaderboard
type LeaderboardEntry struct {
	Rank      int     `json:"rank"`
	UserID    string  `json:"user_id"`
	Username  string  `json:"username"`
	TotalXP   int     `json:"total_xp"`
	Level     int     `json:"level"`
	AvatarURL *string `json:"avatar_url"`
}

// Rank is the caller's position on the leaderboard
type Rank struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	XP       int    `json:"xp"`
	Level    int    `json:"level"`
}

// Guild groups users around a shared goal
type Guild struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	OwnerID     string    `json:"owner_id"`
	MemberIDs   []string  `json:"member_ids"`
	TotalXP     int       `json:"total_xp"`
	Level       int       `json:"level"`
	CreatedAt   time.Time `json:"created_at"`
}

// HasMember reports whether the user already belongs to the guild
func (g *Guild) HasMember(userID string) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
