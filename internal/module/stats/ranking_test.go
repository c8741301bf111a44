package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAttempts struct {
	completed map[string]int
	perfect   map[string]int
	errFor    map[string]error
}

func (f *fakeAttempts) CompletionStats(ctx context.Context, userID string) (int, int, error) {
	if err := f.errFor[userID]; err != nil {
		return 0, 0, err
	}
	return f.completed[userID], f.perfect[userID], nil
}

func TestComputePoints_Formula(t *testing.T) {
	st := &UserStatistics{
		TotalXP:       1234, // floor(1234/10) = 123
		CurrentStreak: 4,    // 20
		LongestStreak: 10,   // 2 * (10-4) = 12
	}
	rarities := []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary} // 185

	// 123 + 50*3 + 25*2 + 185 + 20 + 12 = 540
	got := computePoints(st, 3, 2, rarities)
	assert.Equal(t, int64(540), got)
}

func TestComputePoints_CurrentStreakAtLongest(t *testing.T) {
	st := &UserStatistics{TotalXP: 100, CurrentStreak: 5, LongestStreak: 5}
	// 10 + 25 and no longest bonus.
	assert.Equal(t, int64(35), computePoints(st, 0, 0, nil))
}

func TestRarityWeights(t *testing.T) {
	assert.Equal(t, int64(10), RarityCommon.Weight())
	assert.Equal(t, int64(25), RarityRare.Weight())
	assert.Equal(t, int64(50), RarityEpic.Weight())
	assert.Equal(t, int64(100), RarityLegendary.Weight())
	assert.Equal(t, int64(10), Rarity("unknown").Weight())
}

func newAggregatorFixture(repo *fakeRepo, attempts *fakeAttempts) *Aggregator {
	return NewAggregator(repo, attempts, nil, nil, zap.NewNop())
}

func TestRebuild_StableSortTieBreak(t *testing.T) {
	repo := newFakeRepo()
	// Points end up 30, 90, 90, 10 in insertion order.
	repo.add(UserStatistics{UserID: "a", TotalXP: 300})
	repo.add(UserStatistics{UserID: "b", TotalXP: 900})
	repo.add(UserStatistics{UserID: "c", TotalXP: 900})
	repo.add(UserStatistics{UserID: "d", TotalXP: 100})

	agg := newAggregatorFixture(repo, &fakeAttempts{})
	require.NoError(t, agg.Rebuild(context.Background()))

	// The first user with 90 points keeps the better rank.
	assert.Equal(t, 1, repo.stats["b"].GlobalRank)
	assert.Equal(t, 2, repo.stats["c"].GlobalRank)
	assert.Equal(t, 3, repo.stats["a"].GlobalRank)
	assert.Equal(t, 4, repo.stats["d"].GlobalRank)
	assert.Equal(t, int64(90), repo.stats["b"].Points)
}

func TestRebuild_SkipsFailingUsers(t *testing.T) {
	repo := newFakeRepo()
	repo.add(UserStatistics{UserID: "a", TotalXP: 500})
	repo.add(UserStatistics{UserID: "broken", TotalXP: 900})
	repo.add(UserStatistics{UserID: "c", TotalXP: 100})

	attempts := &fakeAttempts{errFor: map[string]error{"broken": errors.New("boom")}}
	agg := newAggregatorFixture(repo, attempts)
	require.NoError(t, agg.Rebuild(context.Background()))

	// The failing user is skipped, the rest still get ranks.
	assert.Equal(t, 0, repo.stats["broken"].GlobalRank)
	assert.Equal(t, 1, repo.stats["a"].GlobalRank)
	assert.Equal(t, 2, repo.stats["c"].GlobalRank)
}

func TestRebuild_ContinuesPastWriteFailures(t *testing.T) {
	repo := newFakeRepo()
	repo.add(UserStatistics{UserID: "a", TotalXP: 500})
	repo.add(UserStatistics{UserID: "b", TotalXP: 300})
	repo.rankErrors["a"] = errors.New("write failed")

	agg := newAggregatorFixture(repo, &fakeAttempts{})
	require.NoError(t, agg.Rebuild(context.Background()))

	// a's write failed but b still got its rank.
	assert.Equal(t, 2, repo.stats["b"].GlobalRank)
}

func TestRebuild_IncludesAchievementWeights(t *testing.T) {
	repo := newFakeRepo()
	repo.add(UserStatistics{UserID: "a", TotalXP: 0})
	repo.add(UserStatistics{UserID: "b", TotalXP: 0})
	repo.rarities["a"] = []Rarity{RarityLegendary}

	agg := newAggregatorFixture(repo, &fakeAttempts{})
	require.NoError(t, agg.Rebuild(context.Background()))

	assert.Equal(t, 1, repo.stats["a"].GlobalRank)
	assert.Equal(t, int64(100), repo.stats["a"].Points)
}
