package config

import (
	"strings"
	"testing"
	"time"

	"github.com/playperu/treasurehunt/internal/hunt"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ADMIN_PASSWORD", "admin@123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	rules := cfg.Rules()
	if got, want := rules, hunt.DefaultRules(); got.StartLocation != want.StartLocation ||
		got.FinishLocation != want.FinishLocation ||
		got.TargetScans != want.TargetScans ||
		got.MaxDistanceMeters != want.MaxDistanceMeters ||
		got.TimeLimit != want.TimeLimit ||
		got.Pool != want.Pool ||
		got.Metric != want.Metric {
		t.Errorf("rules = %+v, want defaults %+v", got, want)
	}
	if cfg.HTTPAddr != ":5050" {
		t.Errorf("HTTPAddr = %q, want :5050", cfg.HTTPAddr)
	}
	if cfg.AdminTokenTTL != 12*time.Hour {
		t.Errorf("AdminTokenTTL = %s, want 12h", cfg.AdminTokenTTL)
	}
	if cfg.RateLimitPerSec != 5 || cfg.RateLimitBurst != 10 {
		t.Errorf("rate limit = %v/%d, want 5/10", cfg.RateLimitPerSec, cfg.RateLimitBurst)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ADMIN_PASSWORD", "admin@123")
	t.Setenv("TIME_LIMIT", "24h")
	t.Setenv("MAX_DISTANCE_METERS", "100")
	t.Setenv("STRIKE_LIMIT", "3")
	t.Setenv("POOL_POLICY", "unrestricted")
	t.Setenv("RANKING_METRIC", "finish_time")
	t.Setenv("CURATED_LOCATIONS", "WESTSIDE,LION_GATE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r := cfg.Rules()
	if r.TimeLimit != 24*time.Hour {
		t.Errorf("TimeLimit = %s", r.TimeLimit)
	}
	if r.MaxDistanceMeters != 100 {
		t.Errorf("MaxDistanceMeters = %v", r.MaxDistanceMeters)
	}
	if r.StrikeLimit != 3 {
		t.Errorf("StrikeLimit = %d", r.StrikeLimit)
	}
	if r.Pool != hunt.PoolUnrestricted || r.Metric != hunt.MetricFinishTime {
		t.Errorf("Pool = %q, Metric = %q", r.Pool, r.Metric)
	}
	if len(r.CuratedLocations) != 2 || r.CuratedLocations[1] != "LION_GATE" {
		t.Errorf("CuratedLocations = %v", r.CuratedLocations)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing jwt secret",
			env:     map[string]string{"ADMIN_PASSWORD": "x"},
			wantErr: "JWT_SECRET",
		},
		{
			name:    "missing admin password",
			env:     map[string]string{"JWT_SECRET": "s"},
			wantErr: "ADMIN_PASSWORD",
		},
		{
			name:    "unknown pool policy",
			env:     map[string]string{"JWT_SECRET": "s", "ADMIN_PASSWORD": "x", "POOL_POLICY": "shuffled"},
			wantErr: "pool policy",
		},
		{
			name:    "unknown metric",
			env:     map[string]string{"JWT_SECRET": "s", "ADMIN_PASSWORD": "x", "RANKING_METRIC": "points"},
			wantErr: "ranking metric",
		},
		{
			name:    "zero target",
			env:     map[string]string{"JWT_SECRET": "s", "ADMIN_PASSWORD": "x", "TARGET_SCANS": "0"},
			wantErr: "target scans",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			t.Setenv("ADMIN_PASSWORD", "")
			t.Setenv("ADMIN_PASSWORD_HASH", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
