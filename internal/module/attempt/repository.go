package attempt

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Repository defines attempt data access.
type Repository interface {
	// CreateNumbered persists the attempt with the next attempt number for
	// its (user, level) pair.
	CreateNumbered(ctx context.Context, a *LevelAttempt) error
	ListByUserLevel(ctx context.Context, userID, levelID string) ([]LevelAttempt, error)
	// CompletionStats returns the number of levels the user has passed and
	// the number with a best score of 95 or higher.
	CompletionStats(ctx context.Context, userID string) (completed int, perfect int, err error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new attempt repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// createAttemptRetries bounds the duplicate-key retry loop. Two concurrent
// submissions can race to the same attempt number; the unique index rejects
// the loser, which re-reads the max and tries again.
const createAttemptRetries = 3

func (r *repository) CreateNumbered(ctx context.Context, a *LevelAttempt) error {
	var lastErr error
	for i := 0; i < createAttemptRetries; i++ {
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var maxNumber int
			if err := tx.Model(&LevelAttempt{}).
				Where("user_id = ? AND level_id = ?", a.UserID, a.LevelID).
				Select("COALESCE(MAX(attempt_number), 0)").
				Scan(&maxNumber).Error; err != nil {
				return fmt.Errorf("read max attempt number: %w", err)
			}

			a.ID = ""
			a.AttemptNumber = maxNumber + 1
			return tx.Create(a).Error
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("failed to create attempt: %w", err)
		}
		lastErr = err
	}
	return fmt.Errorf("failed to create attempt after retries: %w", lastErr)
}

func (r *repository) ListByUserLevel(ctx context.Context, userID, levelID string) ([]LevelAttempt, error) {
	var attempts []LevelAttempt
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND level_id = ?", userID, levelID).
		Order("attempt_number ASC").
		Find(&attempts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return attempts, nil
}

func (r *repository) CompletionStats(ctx context.Context, userID string) (int, int, error) {
	var completed int
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(DISTINCT a.level_id)
		FROM level_attempts a
		JOIN levels l ON l.id = a.level_id
		WHERE a.user_id = ? AND a.score >= l.passing_score`, userID).
		Scan(&completed).Error
	if err != nil {
		return 0, 0, fmt.Errorf("count completed levels: %w", err)
	}

	var perfect int
	err = r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM (
			SELECT level_id, MAX(score) AS best
			FROM level_attempts
			WHERE user_id = ?
			GROUP BY level_id
		) t WHERE t.best >= 95`, userID).
		Scan(&perfect).Error
	if err != nil {
		return 0, 0, fmt.Errorf("count perfect levels: %w", err)
	}

	return completed, perfect, nil
}
