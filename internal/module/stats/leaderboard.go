package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	leaderboardKey = "leaderboard:global"
	leaderboardTTL = 25 * time.Hour
)

// LeaderboardEntry is one row of the global leaderboard.
type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	UserID       string `json:"userId"`
	Points       int64  `json:"points"`
	TotalXP      int64  `json:"totalXp"`
	CurrentLevel int    `json:"currentLevel"`
}

// LeaderboardCache serves leaderboard reads from a redis snapshot written by
// the ranking aggregator, falling back to the database between rebuilds.
// A nil client disables the cache and every read hits the database.
type LeaderboardCache struct {
	client *redis.Client
	repo   Repository
}

// NewLeaderboardCache creates a new leaderboard cache.
func NewLeaderboardCache(client *redis.Client, repo Repository) *LeaderboardCache {
	return &LeaderboardCache{
		client: client,
		repo:   repo,
	}
}

// Refresh replaces the cached snapshot with freshly ranked entries.
func (l *LeaderboardCache) Refresh(ctx context.Context, ranked []rankEntry) error {
	if l.client == nil {
		return nil
	}

	entries := make([]LeaderboardEntry, 0, len(ranked))
	for i, e := range ranked {
		entries = append(entries, LeaderboardEntry{
			Rank:         i + 1,
			UserID:       e.stats.UserID,
			Points:       e.points,
			TotalXP:      e.stats.TotalXP,
			CurrentLevel: e.stats.CurrentLevel,
		})
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal leaderboard: %w", err)
	}
	return l.client.Set(ctx, leaderboardKey, payload, leaderboardTTL).Err()
}

// Top returns the first limit leaderboard entries.
func (l *LeaderboardCache) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if l.client == nil {
		return l.topFromRepo(ctx, limit)
	}

	raw, err := l.client.Get(ctx, leaderboardKey).Bytes()
	if err == nil {
		var entries []LeaderboardEntry
		if json.Unmarshal(raw, &entries) == nil {
			if len(entries) > limit {
				entries = entries[:limit]
			}
			return entries, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read leaderboard cache: %w", err)
	}

	// Cache miss, serve persisted ranks directly.
	return l.topFromRepo(ctx, limit)
}

func (l *LeaderboardCache) topFromRepo(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	top, err := l.repo.TopRanked(ctx, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(top))
	for _, st := range top {
		entries = append(entries, LeaderboardEntry{
			Rank:         st.GlobalRank,
			UserID:       st.UserID,
			Points:       st.Points,
			TotalXP:      st.TotalXP,
			CurrentLevel: st.CurrentLevel,
		})
	}
	return entries, nil
}
