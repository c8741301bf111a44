package stats

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Service maintains per-user statistics and streaks.
type Service struct {
	repo   Repository
	logger *zap.Logger

	now func() time.Time // injectable for tests
}

// NewService creates a new stats service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Get returns the user's statistics, creating a zeroed view when none exist.
func (s *Service) Get(ctx context.Context, userID string) (*UserStatistics, error) {
	stats, err := s.repo.GetStatistics(ctx, userID)
	if err == ErrStatisticsNotFound {
		return &UserStatistics{UserID: userID, CurrentLevel: 1}, nil
	}
	return stats, err
}

// RecordAttemptOutcome adds earned XP and advances the daily streak. Streaks
// move at most once per calendar day: a second attempt on the same day is a
// no-op for the streak, activity on the day after the last one extends it,
// anything later restarts at 1.
func (s *Service) RecordAttemptOutcome(ctx context.Context, userID string, xpAwarded int) error {
	today := s.now().Format(dateLayout)

	_, err := s.repo.MutateStatistics(ctx, userID, func(st *UserStatistics) error {
		st.TotalXP += int64(xpAwarded)
		st.CurrentLevel = 1 + int(st.TotalXP/xpPerLevel)
		applyStreak(st, today)
		return nil
	})
	return err
}

// applyStreak advances the streak fields for activity on the given day.
func applyStreak(st *UserStatistics, today string) {
	if st.LastActivityDate == today {
		return
	}

	if st.LastActivityDate == previousDay(today) {
		st.CurrentStreak++
	} else {
		st.CurrentStreak = 1
	}
	if st.CurrentStreak > st.LongestStreak {
		st.LongestStreak = st.CurrentStreak
	}
	st.LastActivityDate = today
}

func previousDay(date string) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(dateLayout)
}

// Achievements returns the user's unlocked achievements.
func (s *Service) Achievements(ctx context.Context, userID string) ([]Achievement, error) {
	return s.repo.ListUserAchievements(ctx, userID)
}

// Award unlocks an achievement for the user. Awarding twice is a no-op.
func (s *Service) Award(ctx context.Context, userID, achievementCode string) error {
	return s.repo.AwardAchievement(ctx, userID, achievementCode)
}
