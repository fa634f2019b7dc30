// Package cache keeps the rendered leaderboard in Redis so that display
// boards polling many times a second do not each replay the scan log.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const leaderboardKey = "leaderboard:v1"

// Open connects to the Redis server at rawURL and pings it.
func Open(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

type Leaderboard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewLeaderboard(rdb *redis.Client, ttl time.Duration) *Leaderboard {
	return &Leaderboard{rdb: rdb, ttl: ttl}
}

// Get returns the cached payload, or ok=false on a miss.
func (c *Leaderboard) Get(ctx context.Context) (data []byte, ok bool, err error) {
	data, err = c.rdb.Get(ctx, leaderboardKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading leaderboard cache: %w", err)
	}
	return data, true, nil
}

func (c *Leaderboard) Set(ctx context.Context, data []byte) error {
	if err := c.rdb.Set(ctx, leaderboardKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing leaderboard cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached payload.
func (c *Leaderboard) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, leaderboardKey).Err(); err != nil {
		return fmt.Errorf("invalidating leaderboard cache: %w", err)
	}
	return nil
}

// Check pings Redis; it satisfies health.Checker.
func (c *Leaderboard) Check(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
