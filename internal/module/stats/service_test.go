package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepo struct {
	stats      map[string]*UserStatistics
	order      []string
	rankErrors map[string]error
	rarities   map[string][]Rarity
	rarityErr  map[string]error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		stats:      make(map[string]*UserStatistics),
		rankErrors: make(map[string]error),
		rarities:   make(map[string][]Rarity),
		rarityErr:  make(map[string]error),
	}
}

func (r *fakeRepo) add(st UserStatistics) {
	r.stats[st.UserID] = &st
	r.order = append(r.order, st.UserID)
}

func (r *fakeRepo) GetStatistics(ctx context.Context, userID string) (*UserStatistics, error) {
	if st, ok := r.stats[userID]; ok {
		copied := *st
		return &copied, nil
	}
	return nil, ErrStatisticsNotFound
}

func (r *fakeRepo) MutateStatistics(ctx context.Context, userID string, fn func(*UserStatistics) error) (*UserStatistics, error) {
	st, ok := r.stats[userID]
	if !ok {
		st = &UserStatistics{UserID: userID, CurrentLevel: 1}
		r.stats[userID] = st
		r.order = append(r.order, userID)
	}
	if err := fn(st); err != nil {
		return nil, err
	}
	copied := *st
	return &copied, nil
}

func (r *fakeRepo) ListStatistics(ctx context.Context) ([]UserStatistics, error) {
	out := make([]UserStatistics, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.stats[id])
	}
	return out, nil
}

func (r *fakeRepo) UpdateRank(ctx context.Context, userID string, points int64, rank int) error {
	if err := r.rankErrors[userID]; err != nil {
		return err
	}
	st := r.stats[userID]
	st.Points = points
	st.GlobalRank = rank
	return nil
}

func (r *fakeRepo) ListUserRarities(ctx context.Context, userID string) ([]Rarity, error) {
	if err := r.rarityErr[userID]; err != nil {
		return nil, err
	}
	return r.rarities[userID], nil
}

func (r *fakeRepo) ListUserAchievements(ctx context.Context, userID string) ([]Achievement, error) {
	return nil, nil
}

func (r *fakeRepo) AwardAchievement(ctx context.Context, userID, achievementCode string) error {
	return nil
}

func (r *fakeRepo) TopRanked(ctx context.Context, limit int) ([]UserStatistics, error) {
	return nil, nil
}

func newTestService(repo Repository, at time.Time) *Service {
	svc := NewService(repo, zap.NewNop())
	svc.now = func() time.Time { return at }
	return svc
}

func TestRecordAttemptOutcome_AddsXPAndLevels(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	require.NoError(t, svc.RecordAttemptOutcome(context.Background(), "user-1", 100))
	require.NoError(t, svc.RecordAttemptOutcome(context.Background(), "user-1", 950))

	st, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1050), st.TotalXP)
	assert.Equal(t, 2, st.CurrentLevel)
}

func TestApplyStreak_Transitions(t *testing.T) {
	tests := []struct {
		name         string
		last         string
		current      int
		longest      int
		today        string
		wantCurrent  int
		wantLongest  int
		wantActivity string
	}{
		{"first activity", "", 0, 0, "2026-03-10", 1, 1, "2026-03-10"},
		{"same day is a no-op", "2026-03-10", 3, 5, "2026-03-10", 3, 5, "2026-03-10"},
		{"next day extends", "2026-03-09", 3, 5, "2026-03-10", 4, 5, "2026-03-10"},
		{"new longest", "2026-03-09", 5, 5, "2026-03-10", 6, 6, "2026-03-10"},
		{"gap resets to one", "2026-03-01", 7, 9, "2026-03-10", 1, 9, "2026-03-10"},
		{"across month boundary", "2026-02-28", 2, 2, "2026-03-01", 3, 3, "2026-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &UserStatistics{
				CurrentStreak:    tt.current,
				LongestStreak:    tt.longest,
				LastActivityDate: tt.last,
			}
			applyStreak(st, tt.today)
			assert.Equal(t, tt.wantCurrent, st.CurrentStreak)
			assert.Equal(t, tt.wantLongest, st.LongestStreak)
			assert.Equal(t, tt.wantActivity, st.LastActivityDate)
		})
	}
}

func TestRecordAttemptOutcome_StreakMovesOncePerDay(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RecordAttemptOutcome(context.Background(), "user-1", 10))
	}

	st, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, st.CurrentStreak)

	svc.now = func() time.Time { return time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC) }
	require.NoError(t, svc.RecordAttemptOutcome(context.Background(), "user-1", 10))

	st, _ = svc.Get(context.Background(), "user-1")
	assert.Equal(t, 2, st.CurrentStreak)
	assert.Equal(t, 2, st.LongestStreak)
}

func TestGet_UnknownUserReadsAsZeroed(t *testing.T) {
	svc := newTestService(newFakeRepo(), time.Now())

	st, err := svc.Get(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, int64(0), st.TotalXP)
	assert.Equal(t, 1, st.CurrentLevel)
	assert.Equal(t, 0, st.CurrentStreak)
}
