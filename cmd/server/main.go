package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/playperu/treasurehunt/internal/auth"
	"github.com/playperu/treasurehunt/internal/cache"
	"github.com/playperu/treasurehunt/internal/config"
	"github.com/playperu/treasurehunt/internal/database"
	"github.com/playperu/treasurehunt/internal/handler/health"
	"github.com/playperu/treasurehunt/internal/hunt"
	"github.com/playperu/treasurehunt/internal/migrations"
	"github.com/playperu/treasurehunt/internal/server"
	"github.com/playperu/treasurehunt/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}
	}
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	st := store.New(db)
	if cfg.SeedDemo {
		if err := st.SeedLocations(ctx, logger, store.DemoLocations()); err != nil {
			return fmt.Errorf("seeding locations: %w", err)
		}
	}

	checks := map[string]health.Checker{"sqlite": health.DB(db)}

	// --- Redis (optional) ---
	var lbCache server.LeaderboardCache
	if cfg.RedisURL != "" {
		rdb, err := cache.Open(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		lb := cache.NewLeaderboard(rdb, cfg.LeaderboardCacheTTL)
		lbCache = lb
		checks["redis"] = lb
		logger.Info("connected to redis", "leaderboard_ttl", cfg.LeaderboardCacheTTL)
	}

	// --- Admin auth ---
	hash := []byte(cfg.AdminPasswordHash)
	if len(hash) == 0 {
		if hash, err = auth.HashPassword(cfg.AdminPassword); err != nil {
			return fmt.Errorf("hashing admin password: %w", err)
		}
	}
	issuer := auth.NewIssuer(cfg.JWTSecret, hash, cfg.AdminTokenTTL, st)

	// --- Hunt engine ---
	rules := cfg.Rules()
	broker := server.NewBroker()
	engine := hunt.NewEngine(st, rules, logger,
		hunt.WithObserver(server.Observe(broker, lbCache)),
	)
	logger.Info("hunt rules loaded",
		"start", rules.StartLocation,
		"target_scans", rules.TargetScans,
		"max_distance_m", rules.MaxDistanceMeters,
		"time_limit", rules.TimeLimit,
		"pool", rules.Pool,
		"metric", rules.Metric,
	)

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Engine:  engine,
		Queries: st,
		Auth:    issuer,
		Broker:  broker,
		Cache:   lbCache,
		Checks:  checks,
		SPADir:  cfg.SPADir,
		RateLimit: server.RateLimit{
			PerSecond: cfg.RateLimitPerSec,
			Burst:     cfg.RateLimitBurst,
		},
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
