package stats

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/promptcraft/server/internal/shared/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStatisticsNotFound indicates no statistics row exists for the user.
var ErrStatisticsNotFound = fmt.Errorf("%w: user statistics", apperrors.ErrNotFound)

// Repository defines statistics data access.
type Repository interface {
	GetStatistics(ctx context.Context, userID string) (*UserStatistics, error)
	// MutateStatistics runs fn on the user's row under a row lock, creating
	// the row first if missing.
	MutateStatistics(ctx context.Context, userID string, fn func(*UserStatistics) error) (*UserStatistics, error)
	// ListStatistics returns every row ordered by creation time, which fixes
	// the tie-break order for the ranking aggregator.
	ListStatistics(ctx context.Context) ([]UserStatistics, error)
	UpdateRank(ctx context.Context, userID string, points int64, rank int) error
	ListUserRarities(ctx context.Context, userID string) ([]Rarity, error)
	ListUserAchievements(ctx context.Context, userID string) ([]Achievement, error)
	AwardAchievement(ctx context.Context, userID, achievementCode string) error
	TopRanked(ctx context.Context, limit int) ([]UserStatistics, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new stats repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetStatistics(ctx context.Context, userID string) (*UserStatistics, error) {
	var stats UserStatistics
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStatisticsNotFound
		}
		return nil, fmt.Errorf("failed to get statistics: %w", err)
	}
	return &stats, nil
}

func (r *repository) MutateStatistics(ctx context.Context, userID string, fn func(*UserStatistics) error) (*UserStatistics, error) {
	var stats UserStatistics
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := UserStatistics{UserID: userID, CurrentLevel: 1}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return fmt.Errorf("seed statistics: %w", err)
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&stats).Error; err != nil {
			return fmt.Errorf("lock statistics: %w", err)
		}

		if err := fn(&stats); err != nil {
			return err
		}
		return tx.Save(&stats).Error
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *repository) ListStatistics(ctx context.Context) ([]UserStatistics, error) {
	var all []UserStatistics
	err := r.db.WithContext(ctx).Order("created_at ASC, user_id ASC").Find(&all).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list statistics: %w", err)
	}
	return all, nil
}

func (r *repository) UpdateRank(ctx context.Context, userID string, points int64, rank int) error {
	err := r.db.WithContext(ctx).Model(&UserStatistics{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{"points": points, "global_rank": rank}).Error
	if err != nil {
		return fmt.Errorf("failed to update rank: %w", err)
	}
	return nil
}

func (r *repository) ListUserRarities(ctx context.Context, userID string) ([]Rarity, error) {
	var rarities []Rarity
	err := r.db.WithContext(ctx).
		Model(&UserAchievement{}).
		Select("achievements.rarity").
		Joins("JOIN achievements ON achievements.id = user_achievements.achievement_id").
		Where("user_achievements.user_id = ?", userID).
		Scan(&rarities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list achievement rarities: %w", err)
	}
	return rarities, nil
}

func (r *repository) ListUserAchievements(ctx context.Context, userID string) ([]Achievement, error) {
	var achievements []Achievement
	err := r.db.WithContext(ctx).
		Model(&Achievement{}).
		Joins("JOIN user_achievements ON user_achievements.achievement_id = achievements.id").
		Where("user_achievements.user_id = ?", userID).
		Order("user_achievements.awarded_at ASC").
		Find(&achievements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	return achievements, nil
}

func (r *repository) AwardAchievement(ctx context.Context, userID, achievementCode string) error {
	var achievement Achievement
	err := r.db.WithContext(ctx).Where("code = ?", achievementCode).First(&achievement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: achievement %s", apperrors.ErrNotFound, achievementCode)
		}
		return fmt.Errorf("failed to get achievement: %w", err)
	}

	ua := UserAchievement{UserID: userID, AchievementID: achievement.ID}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&ua).Error
	if err != nil {
		return fmt.Errorf("failed to award achievement: %w", err)
	}
	return nil
}

func (r *repository) TopRanked(ctx context.Context, limit int) ([]UserStatistics, error) {
	var top []UserStatistics
	err := r.db.WithContext(ctx).
		Where("global_rank > 0").
		Order("global_rank ASC").
		Limit(limit).
		Find(&top).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list top ranked: %w", err)
	}
	return top, nil
}
