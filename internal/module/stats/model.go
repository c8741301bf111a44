package stats

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStatistics is the per-user progress row. Streak fields mutate only
// through the activity recording path, points and global rank only through
// the ranking aggregator.
type UserStatistics struct {
	UserID           string `gorm:"type:varchar(128);primaryKey" json:"userId"`
	TotalXP          int64  `gorm:"not null;default:0" json:"totalXp"`
	CurrentLevel     int    `gorm:"not null;default:1" json:"currentLevel"`
	CurrentStreak    int    `gorm:"not null;default:0" json:"currentStreak"`
	LongestStreak    int    `gorm:"not null;default:0" json:"longestStreak"`
	LastActivityDate string `gorm:"type:varchar(10)" json:"lastActivityDate"`
	GlobalRank       int    `gorm:"not null;default:0" json:"globalRank"`
	Points           int64  `gorm:"not null;default:0" json:"points"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the table name for the UserStatistics model.
func (UserStatistics) TableName() string {
	return "user_statistics"
}

// xpPerLevel converts accumulated XP into the user's display level.
const xpPerLevel = 1000

// Rarity grades an achievement.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Weight returns the ranking points an achievement of this rarity is worth.
func (r Rarity) Weight() int64 {
	switch r {
	case RarityLegendary:
		return 100
	case RarityEpic:
		return 50
	case RarityRare:
		return 25
	default:
		return 10
	}
}

// Achievement is one unlockable badge.
type Achievement struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string `gorm:"type:varchar(64);not null;uniqueIndex" json:"code"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Rarity      Rarity `gorm:"type:varchar(16);not null;default:common" json:"rarity"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName returns the table name for the Achievement model.
func (Achievement) TableName() string {
	return "achievements"
}

// BeforeCreate generates a UUID if not set.
func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// UserAchievement records one unlocked achievement.
type UserAchievement struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_user_achievement,priority:1" json:"userId"`
	AchievementID string    `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement,priority:2" json:"achievementId"`
	AwardedAt     time.Time `json:"awardedAt"`
}

// TableName returns the table name for the UserAchievement model.
func (UserAchievement) TableName() string {
	return "user_achievements"
}

// BeforeCreate generates a UUID if not set.
func (ua *UserAchievement) BeforeCreate(tx *gorm.DB) error {
	if ua.ID == "" {
		ua.ID = uuid.New().String()
	}
	if ua.AwardedAt.IsZero() {
		ua.AwardedAt = time.Now()
	}
	return nil
}
