package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/playperu/treasurehunt/internal/cache"
)

func TestLeaderboardCache(t *testing.T) {
	env := newTestEnv(t, testRules())
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	lb := newLeaderboard(env.engine, cache.NewLeaderboard(rdb, time.Minute), slog.Default())

	env.register(t, "Night Owls")
	if got := renderCount(t, lb); got != 1 {
		t.Fatalf("first render: %d entries, want 1", got)
	}
	if !mr.Exists("leaderboard:v1") {
		t.Fatal("leaderboard was not cached")
	}

	// Registered behind the cache's back: the snapshot is served.
	if _, err := env.engine.Register(ctx, "Larks", []string{"Mina"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := renderCount(t, lb); got != 1 {
		t.Fatalf("cached render: %d entries, want 1", got)
	}

	lb.invalidate(ctx)
	if got := renderCount(t, lb); got != 2 {
		t.Fatalf("render after invalidate: %d entries, want 2", got)
	}
}

func TestLeaderboardConcurrentRender(t *testing.T) {
	env := newTestEnv(t, testRules())
	env.register(t, "Night Owls")
	lb := newLeaderboard(env.engine, nil, slog.Default())

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := lb.render(context.Background()); err != nil {
				t.Errorf("render: %v", err)
			}
		}()
	}
	wg.Wait()
}

func renderCount(t *testing.T, lb *leaderboard) int {
	t.Helper()
	data, err := lb.render(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var items []LeaderboardItem
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return len(items)
}
