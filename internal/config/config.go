package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/playperu/treasurehunt/internal/hunt"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":5050"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/hunt.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR"`
	SeedDemo bool       `env:"SEED_DEMO" envDefault:"true"`

	RedisURL            string        `env:"REDIS_URL"`
	LeaderboardCacheTTL time.Duration `env:"LEADERBOARD_CACHE_TTL" envDefault:"5s"`

	RateLimitPerSec float64 `env:"RATE_LIMIT_PER_SEC" envDefault:"5"`
	RateLimitBurst  int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	AdminPassword     string        `env:"ADMIN_PASSWORD"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	JWTSecret         string        `env:"JWT_SECRET"`
	AdminTokenTTL     time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"12h"`

	StartLocation         string        `env:"START_LOCATION" envDefault:"CLG"`
	FinishLocation        string        `env:"FINISH_LOCATION" envDefault:"COMPLETED"`
	TargetScans           int           `env:"TARGET_SCANS" envDefault:"5"`
	MaxDistanceMeters     float64       `env:"MAX_DISTANCE_METERS" envDefault:"25"`
	GPSFailDisqualifies   bool          `env:"GPS_FAIL_DISQUALIFIES" envDefault:"false"`
	TimeLimit             time.Duration `env:"TIME_LIMIT" envDefault:"2h"`
	TimeLimitDisqualifies bool          `env:"TIME_LIMIT_DISQUALIFIES" envDefault:"true"`
	EnforceSequence       bool          `env:"ENFORCE_SEQUENCE" envDefault:"true"`
	StrikeLimit           int           `env:"STRIKE_LIMIT" envDefault:"0"`
	PoolPolicy            string        `env:"POOL_POLICY" envDefault:"curated"`
	CuratedLocations      []string      `env:"CURATED_LOCATIONS" envSeparator:","`
	RankingMetric         string        `env:"RANKING_METRIC" envDefault:"duration"`
	EnableCompass         bool          `env:"ENABLE_COMPASS" envDefault:"false"`
}

// Load reads a .env file from the working directory when present, then
// parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		return nil, errors.New("one of ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}
	if err := cfg.Rules().Validate(); err != nil {
		return nil, fmt.Errorf("invalid hunt rules: %w", err)
	}
	return &cfg, nil
}

// Rules maps the hunt settings onto hunt.Rules.
func (c *Config) Rules() hunt.Rules {
	return hunt.Rules{
		StartLocation:         c.StartLocation,
		FinishLocation:        c.FinishLocation,
		TargetScans:           c.TargetScans,
		MaxDistanceMeters:     c.MaxDistanceMeters,
		GPSFailDisqualifies:   c.GPSFailDisqualifies,
		TimeLimit:             c.TimeLimit,
		TimeLimitDisqualifies: c.TimeLimitDisqualifies,
		EnforceSequence:       c.EnforceSequence,
		StrikeLimit:           c.StrikeLimit,
		Pool:                  hunt.PoolPolicy(c.PoolPolicy),
		CuratedLocations:      c.CuratedLocations,
		Metric:                hunt.Metric(c.RankingMetric),
		EnableCompass:         c.EnableCompass,
	}
}
