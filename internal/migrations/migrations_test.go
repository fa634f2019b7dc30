package migrations_test

import (
	"context"
	"testing"

	"github.com/playperu/treasurehunt/internal/database"
	"github.com/playperu/treasurehunt/internal/migrations"
)

func TestMigrations(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	// Verify all tables exist by querying sqlite_master.
	want := []string{"teams", "locations", "scans", "banned_devices", "revoked_tokens"}

	for _, table := range want {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := migrations.Run(db); err != nil {
		t.Fatalf("second run (should be no-op): %v", err)
	}
}

func TestScanResultConstraint(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO scans (id, team_id, location_id, device_id, scan_result, scan_time)
		VALUES ('x', 'TEAM-0000', 'CLG', 'dev', 'MAYBE', '2026-01-01T00:00:00.000000000Z')
	`)
	if err == nil {
		t.Fatal("expected check constraint to reject unknown scan_result")
	}
}
