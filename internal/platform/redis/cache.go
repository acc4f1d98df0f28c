// Package redis provides the Redis-backed leaderboard read cache.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/domain/period"
	"github.com/Auroral0810/LaTexia-sub000/internal/service/leaderboard"
)

const keyPrefix = "practice:leaderboard"

// LeaderboardCache stores Query results per (period, limit) with a TTL.
type LeaderboardCache struct {
	rdb    goredis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

var _ leaderboard.Cache = (*LeaderboardCache)(nil)

// NewClient parses a redis:// URL and verifies the server answers PING.
func NewClient(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewLeaderboardCache wraps rdb. A non-positive ttl disables expiry.
func NewLeaderboardCache(rdb goredis.UniversalClient, ttl time.Duration, logger *slog.Logger) *LeaderboardCache {
	if rdb == nil {
		panic("redis client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if ttl < 0 {
		ttl = 0
	}
	return &LeaderboardCache{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "leaderboard_cache")),
	}
}

func periodPrefix(p period.Period) string {
	return fmt.Sprintf("%s:%s:%s:", keyPrefix, p.Type, p.Key)
}

func entryKey(p period.Period, limit int) string {
	return fmt.Sprintf("%s%d", periodPrefix(p), limit)
}

// Get implements leaderboard.Cache.
func (c *LeaderboardCache) Get(ctx context.Context, p period.Period, limit int) ([]domain.RankedEntry, bool, error) {
	raw, err := c.rdb.Get(ctx, entryKey(p, limit)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var entries []domain.RankedEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		c.logger.Warn("discarding undecodable cache entry",
			slog.String("period", p.String()),
			slog.String("error", err.Error()))
		return nil, false, nil
	}
	return entries, true, nil
}

// Set implements leaderboard.Cache.
func (c *LeaderboardCache) Set(ctx context.Context, p period.Period, limit int, entries []domain.RankedEntry) error {
	if entries == nil {
		entries = []domain.RankedEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode leaderboard entries: %w", err)
	}
	if err := c.rdb.Set(ctx, entryKey(p, limit), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate implements leaderboard.Cache by deleting every cached limit of p.
func (c *LeaderboardCache) Invalidate(ctx context.Context, p period.Period) error {
	iter := c.rdb.Scan(ctx, 0, periodPrefix(p)+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	c.logger.Debug("leaderboard cache invalidated",
		slog.String("period", p.String()),
		slog.Int("keys", len(keys)))
	return nil
}
