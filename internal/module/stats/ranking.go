package stats

import (
	"context"
	"sort"
	"time"

	"github.com/promptcraft/server/internal/utils/metrics"
	"go.uber.org/zap"
)

// AttemptSource reports level completion counts for the points formula. The
// attempt module implements it.
type AttemptSource interface {
	CompletionStats(ctx context.Context, userID string) (completed int, perfect int, err error)
}

// Aggregator recomputes points and global rank for every user. It is a
// batch job: a daily trigger and the admin rebuild endpoint call it, nothing
// in the request path does.
type Aggregator struct {
	repo        Repository
	attempts    AttemptSource
	leaderboard *LeaderboardCache
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewAggregator creates a new ranking aggregator.
func NewAggregator(repo Repository, attempts AttemptSource, leaderboard *LeaderboardCache, m *metrics.Metrics, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		repo:        repo,
		attempts:    attempts,
		leaderboard: leaderboard,
		metrics:     m,
		logger:      logger,
	}
}

type rankEntry struct {
	stats  UserStatistics
	points int64
}

// Rebuild recomputes points for every user, assigns 1-based ranks in
// descending points order and persists the result. Per-user failures are
// logged and skipped so one bad row never aborts the batch.
func (a *Aggregator) Rebuild(ctx context.Context) error {
	start := time.Now()

	all, err := a.repo.ListStatistics(ctx)
	if err != nil {
		return err
	}

	entries := make([]rankEntry, 0, len(all))
	for _, st := range all {
		pts, err := a.pointsFor(ctx, &st)
		if err != nil {
			a.recordError()
			a.logger.Warn("skipping user in ranking rebuild",
				zap.String("user_id", st.UserID),
				zap.Error(err))
			continue
		}
		entries = append(entries, rankEntry{stats: st, points: pts})
	}

	// Stable sort keeps the repository's creation order as the tie-break.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].points > entries[j].points
	})

	for i, e := range entries {
		rank := i + 1
		if err := a.repo.UpdateRank(ctx, e.stats.UserID, e.points, rank); err != nil {
			a.recordError()
			a.logger.Warn("failed to persist rank",
				zap.String("user_id", e.stats.UserID),
				zap.Int("rank", rank),
				zap.Error(err))
		}
	}

	if a.leaderboard != nil {
		if err := a.leaderboard.Refresh(ctx, entries); err != nil {
			a.logger.Warn("failed to refresh leaderboard cache", zap.Error(err))
		}
	}

	if a.metrics != nil {
		a.metrics.RankingRebuildDuration.Observe(time.Since(start).Seconds())
	}
	a.logger.Info("ranking rebuild complete",
		zap.Int("users", len(entries)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (a *Aggregator) pointsFor(ctx context.Context, st *UserStatistics) (int64, error) {
	completed, perfect, err := a.attempts.CompletionStats(ctx, st.UserID)
	if err != nil {
		return 0, err
	}
	rarities, err := a.repo.ListUserRarities(ctx, st.UserID)
	if err != nil {
		return 0, err
	}
	return computePoints(st, completed, perfect, rarities), nil
}

// computePoints is the ranking formula.
func computePoints(st *UserStatistics, completedLevels, perfectScores int, rarities []Rarity) int64 {
	points := st.TotalXP / 10
	points += 50 * int64(completedLevels)
	points += 25 * int64(perfectScores)
	for _, r := range rarities {
		points += r.Weight()
	}
	points += 5 * int64(st.CurrentStreak)
	if extra := st.LongestStreak - st.CurrentStreak; extra > 0 {
		points += 2 * int64(extra)
	}
	return points
}

func (a *Aggregator) recordError() {
	if a.metrics != nil {
		a.metrics.RankingRebuildErrors.Inc()
	}
}

// RunDaily invokes Rebuild on the given interval until the context is
// canceled, with one immediate run at startup.
func (a *Aggregator) RunDaily(ctx context.Context, interval time.Duration) {
	if err := a.Rebuild(ctx); err != nil {
		a.logger.Error("initial ranking rebuild failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.Rebuild(ctx); err != nil {
				a.logger.Error("scheduled ranking rebuild failed", zap.Error(err))
			}
		}
	}
}
