package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/playperu/treasurehunt/internal/hunt"
)

// LeaderboardItem is one row of GET /leaderboard.
type LeaderboardItem struct {
	TeamID          string `json:"teamId"`
	TeamName        string `json:"teamName"`
	Score           int    `json:"score"`
	Finished        bool   `json:"finished"`
	Disqualified    bool   `json:"disqualified"`
	LastScanTime    int64  `json:"lastScanTime"`
	DurationSeconds int64  `json:"durationSeconds,omitempty"`
	Rank            int    `json:"rank,omitempty"`
}

// leaderboard renders the standings once per burst of concurrent requests
// and keeps the rendered bytes in the optional cache.
type leaderboard struct {
	engine *hunt.Engine
	cache  LeaderboardCache
	logger *slog.Logger
	group  singleflight.Group
}

func newLeaderboard(engine *hunt.Engine, cache LeaderboardCache, logger *slog.Logger) *leaderboard {
	return &leaderboard{engine: engine, cache: cache, logger: logger}
}

func (l *leaderboard) render(ctx context.Context) ([]byte, error) {
	if l.cache != nil {
		data, ok, err := l.cache.Get(ctx)
		if err != nil {
			l.logger.Warn("leaderboard cache read failed", "error", err)
		}
		if ok {
			return data, nil
		}
	}

	v, err, _ := l.group.Do("leaderboard", func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		entries, err := l.engine.Leaderboard(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(leaderboardItems(entries))
		if err != nil {
			return nil, fmt.Errorf("encoding leaderboard: %w", err)
		}
		if l.cache != nil {
			if err := l.cache.Set(ctx, data); err != nil {
				l.logger.Warn("leaderboard cache write failed", "error", err)
			}
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (l *leaderboard) invalidate(ctx context.Context) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Invalidate(ctx); err != nil {
		l.logger.Warn("leaderboard cache invalidate failed", "error", err)
	}
}

func leaderboardItems(entries []hunt.LeaderboardEntry) []LeaderboardItem {
	items := make([]LeaderboardItem, 0, len(entries))
	for _, e := range entries {
		it := LeaderboardItem{
			TeamID:          e.TeamID,
			TeamName:        e.TeamName,
			Score:           e.Score,
			Finished:        e.Finished,
			Disqualified:    e.Disqualified,
			DurationSeconds: int64(e.Duration / time.Second),
			Rank:            e.Rank,
		}
		if !e.LastScanAt.IsZero() {
			it.LastScanTime = e.LastScanAt.UnixMilli()
		}
		items = append(items, it)
	}
	return items
}

func handleLeaderboard(lb *leaderboard, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := lb.render(r.Context())
		if err != nil {
			writeHuntError(w, logger, err)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
