package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/playperu/treasurehunt/internal/hunt"
)

const scanColumns = `s.id, s.team_id, COALESCE(t.team_name, ''), s.location_id, s.device_id,
	s.client_lat, s.client_lng, s.scan_result, s.admin_note, s.distance_check_meters, s.scan_time`

const scanFrom = ` FROM scans s LEFT JOIN teams t ON t.team_id = s.team_id `

func scanEvent(row rowScanner) (hunt.ScanEvent, error) {
	var (
		ev                 hunt.ScanEvent
		lat, lng, distance sql.NullFloat64
		result, scannedAt  string
	)
	err := row.Scan(&ev.ID, &ev.TeamID, &ev.TeamName, &ev.LocationCode, &ev.DeviceID,
		&lat, &lng, &result, &ev.AdminNote, &distance, &scannedAt)
	if err != nil {
		return hunt.ScanEvent{}, err
	}
	ev.Lat, ev.Lng, ev.DistanceMeters = floatPtr(lat), floatPtr(lng), floatPtr(distance)
	ev.Result = hunt.Result(result)
	if ev.ScannedAt, err = parseTime(scannedAt); err != nil {
		return hunt.ScanEvent{}, err
	}
	return ev, nil
}

func (s *Store) queryScans(ctx context.Context, where string, args ...any) ([]hunt.ScanEvent, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+scanColumns+scanFrom+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []hunt.ScanEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertScan(ctx context.Context, db execer, ev hunt.ScanEvent) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO scans (id, team_id, location_id, device_id, client_lat, client_lng,
			scan_result, admin_note, distance_check_meters, scan_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.ID, ev.TeamID, ev.LocationCode, ev.DeviceID, nullFloat(ev.Lat), nullFloat(ev.Lng),
		string(ev.Result), ev.AdminNote, nullFloat(ev.DistanceMeters), formatTime(ev.ScannedAt))
	return err
}

func (s *Store) InsertScan(ctx context.Context, ev hunt.ScanEvent) error {
	return insertScan(ctx, s.db, ev)
}

func (s *Store) RecordStrike(ctx context.Context, ev hunt.ScanEvent) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if err := insertScan(ctx, tx, ev); err != nil {
		return 0, err
	}

	var strikes int
	countErr := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM scans WHERE team_id = ? AND scan_result = 'FAIL'
	`, ev.TeamID).Scan(&strikes)

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	if countErr != nil {
		return 0, fmt.Errorf("%w: %v", hunt.ErrStrikeCount, countErr)
	}
	return strikes, nil
}

func (s *Store) FirstSuccessAt(ctx context.Context, teamID, code string) (time.Time, bool, error) {
	var first sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT MIN(scan_time) FROM scans
		WHERE team_id = ? AND location_id = ? AND scan_result = 'SUCCESS'
	`, teamID, code).Scan(&first)
	if err != nil || !first.Valid {
		return time.Time{}, false, err
	}
	t, err := parseTime(first.String)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func (s *Store) TeamSuccesses(ctx context.Context, teamID string) ([]hunt.ScanEvent, error) {
	return s.queryScans(ctx,
		`WHERE s.team_id = ? AND s.scan_result = 'SUCCESS' ORDER BY s.scan_time, s.rowid`, teamID)
}

func (s *Store) Successes(ctx context.Context) ([]hunt.ScanEvent, error) {
	return s.queryScans(ctx, `WHERE s.scan_result = 'SUCCESS' ORDER BY s.scan_time, s.rowid`)
}

// ListScans returns the most recent scans first. A limit of 0 returns all.
func (s *Store) ListScans(ctx context.Context, limit int) ([]hunt.ScanEvent, error) {
	if limit > 0 {
		return s.queryScans(ctx, `ORDER BY s.scan_time DESC, s.rowid DESC LIMIT ?`, limit)
	}
	return s.queryScans(ctx, `ORDER BY s.scan_time DESC, s.rowid DESC`)
}
