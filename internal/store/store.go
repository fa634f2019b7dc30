// Package store persists teams, scans, locations and bans in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playperu/treasurehunt/internal/hunt"
)

// Fixed-width so that lexical order equals time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements hunt.Store on a migrated SQLite database.
type Store struct {
	db *sql.DB
}

var _ hunt.Store = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime accepts any RFC 3339 form: the driver may hand stored values
// back with trailing zeros trimmed.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// expectRow maps a zero-row update to hunt.ErrNotFound.
func expectRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return hunt.ErrNotFound
	}
	return nil
}

// Teams

const teamColumns = `team_id, team_name, members, assigned_location, COALESCE(registered_device_id, ''), disqualified, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTeam(row rowScanner) (hunt.Team, error) {
	var (
		t            hunt.Team
		members      string
		disqualified int
		createdAt    string
	)
	if err := row.Scan(&t.ID, &t.Name, &members, &t.AssignedLocation, &t.RegisteredDeviceID, &disqualified, &createdAt); err != nil {
		return hunt.Team{}, err
	}
	if err := json.Unmarshal([]byte(members), &t.Members); err != nil {
		return hunt.Team{}, fmt.Errorf("decoding members of %s: %w", t.ID, err)
	}
	t.Disqualified = disqualified != 0
	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return hunt.Team{}, err
	}
	return t, nil
}

func (s *Store) CreateTeam(ctx context.Context, t hunt.Team) error {
	members, err := json.Marshal(t.Members)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM teams WHERE name_key = ?)`, nameKey(t.Name),
	).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return hunt.ErrNameTaken
	}
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM teams WHERE team_id = ?)`, t.ID,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return hunt.ErrIDTaken
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO teams (team_id, team_name, name_key, members, assigned_location, disqualified, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
	`, t.ID, t.Name, nameKey(t.Name), string(members), t.AssignedLocation, formatTime(t.CreatedAt))
	if err != nil {
		// A concurrent registration can still win between check and insert.
		switch msg := err.Error(); {
		case strings.Contains(msg, "teams.name_key"):
			return hunt.ErrNameTaken
		case strings.Contains(msg, "teams.team_id"):
			return hunt.ErrIDTaken
		}
		return err
	}
	return tx.Commit()
}

func (s *Store) Team(ctx context.Context, teamID string) (hunt.Team, error) {
	t, err := scanTeam(s.db.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE team_id = ?`, teamID))
	if errors.Is(err, sql.ErrNoRows) {
		return hunt.Team{}, hunt.ErrNotFound
	}
	return t, err
}

func (s *Store) TeamByName(ctx context.Context, name string) (hunt.Team, error) {
	t, err := scanTeam(s.db.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE name_key = ?`, nameKey(name)))
	if errors.Is(err, sql.ErrNoRows) {
		return hunt.Team{}, hunt.ErrNotFound
	}
	return t, err
}

func (s *Store) ListTeams(ctx context.Context) ([]hunt.Team, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+teamColumns+` FROM teams ORDER BY team_name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []hunt.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (s *Store) DeleteTeam(ctx context.Context, teamID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM scans WHERE team_id = ?`, teamID); err != nil {
		return err
	}
	if err := expectRow(tx.ExecContext(ctx, `DELETE FROM teams WHERE team_id = ?`, teamID)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) BindDevice(ctx context.Context, teamID, deviceID string) (string, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE teams SET registered_device_id = ?
		WHERE team_id = ? AND registered_device_id IS NULL
	`, deviceID, teamID)
	if err != nil {
		return "", err
	}

	var bound sql.NullString
	err = s.db.QueryRowContext(ctx,
		`SELECT registered_device_id FROM teams WHERE team_id = ?`, teamID,
	).Scan(&bound)
	if errors.Is(err, sql.ErrNoRows) {
		return "", hunt.ErrNotFound
	}
	return bound.String, err
}

func (s *Store) SetDisqualified(ctx context.Context, teamID string, disqualified bool) error {
	return expectRow(s.db.ExecContext(ctx,
		`UPDATE teams SET disqualified = ? WHERE team_id = ?`, boolInt(disqualified), teamID))
}

func (s *Store) SetAssignedLocation(ctx context.Context, teamID, code string) error {
	return expectRow(s.db.ExecContext(ctx,
		`UPDATE teams SET assigned_location = ? WHERE team_id = ?`, code, teamID))
}

func (s *Store) ResetTeam(ctx context.Context, teamID, code string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = expectRow(tx.ExecContext(ctx, `
		UPDATE teams
		SET assigned_location = ?, registered_device_id = NULL, disqualified = 0
		WHERE team_id = ?
	`, code, teamID))
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM scans WHERE team_id = ?`, teamID); err != nil {
		return err
	}
	return tx.Commit()
}
