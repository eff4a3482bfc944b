package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/LoneDev6/review-user-bot/internal/domain"
	"github.com/LoneDev6/review-user-bot/internal/metrics"
)

const leaderboardCachePrefix = "leaderboard_cache:"

// LeaderboardCache caches TopRanked results per limit with a short TTL.
// Misses and redis errors both fall through to the store; writes invalidate
// every cached limit. All operations are best-effort.
type LeaderboardCache struct {
	rdb goredis.Cmdable
	ttl time.Duration
}

var _ domain.LeaderboardCache = (*LeaderboardCache)(nil)

func NewLeaderboardCache(rdb goredis.Cmdable, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{rdb: rdb, ttl: ttl}
}

func (c *LeaderboardCache) key(limit int) string {
	return fmt.Sprintf("%s%d", leaderboardCachePrefix, limit)
}

func (c *LeaderboardCache) Get(ctx context.Context, limit int) ([]domain.RankedUser, bool) {
	data, err := c.rdb.Get(ctx, c.key(limit)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			slog.Warn("Redis leaderboard cache GET failed, falling through to store", "error", err)
		}
		metrics.LeaderboardCacheMisses.Inc()
		return nil, false
	}

	var ranking []domain.RankedUser
	if err := json.Unmarshal(data, &ranking); err != nil {
		slog.Warn("Failed to unmarshal cached leaderboard, falling through to store", "error", err)
		metrics.LeaderboardCacheMisses.Inc()
		return nil, false
	}

	metrics.LeaderboardCacheHits.Inc()
	return ranking, true
}

func (c *LeaderboardCache) Set(ctx context.Context, limit int, ranking []domain.RankedUser) {
	encoded, err := json.Marshal(ranking)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(limit), encoded, c.ttl).Err(); err != nil {
		slog.Warn("Failed to populate leaderboard cache", "error", err)
	}
}

// Invalidate drops all cached leaderboard limits after a review write.
func (c *LeaderboardCache) Invalidate(ctx context.Context) {
	iter := c.rdb.Scan(ctx, 0, leaderboardCachePrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Warn("Failed to scan leaderboard cache keys", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("Failed to invalidate leaderboard cache", "error", err)
	}
}
