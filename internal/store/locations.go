package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/playperu/treasurehunt/internal/hunt"
)

const locationColumns = `location_code, location_name, location_hint, latitude, longitude`

func scanLocation(row rowScanner) (hunt.Location, error) {
	var (
		loc      hunt.Location
		lat, lng sql.NullFloat64
	)
	if err := row.Scan(&loc.Code, &loc.Name, &loc.Hint, &lat, &lng); err != nil {
		return hunt.Location{}, err
	}
	loc.Lat, loc.Lng = floatPtr(lat), floatPtr(lng)
	return loc, nil
}

func (s *Store) Location(ctx context.Context, code string) (hunt.Location, error) {
	loc, err := scanLocation(s.db.QueryRowContext(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE location_code = ?`, code))
	if errors.Is(err, sql.ErrNoRows) {
		return hunt.Location{}, hunt.ErrNotFound
	}
	return loc, err
}

func (s *Store) ListLocations(ctx context.Context) ([]hunt.Location, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+locationColumns+` FROM locations ORDER BY location_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []hunt.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

// UpsertLocation inserts loc or replaces the location with the same code.
func (s *Store) UpsertLocation(ctx context.Context, loc hunt.Location) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO locations (location_code, location_name, location_hint, latitude, longitude)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(location_code) DO UPDATE SET
			location_name = excluded.location_name,
			location_hint = excluded.location_hint,
			latitude = excluded.latitude,
			longitude = excluded.longitude
	`, loc.Code, loc.Name, loc.Hint, nullFloat(loc.Lat), nullFloat(loc.Lng))
	return err
}

// UpdateLocationCoords moves the target point of an existing location.
func (s *Store) UpdateLocationCoords(ctx context.Context, code string, lat, lng float64) error {
	return expectRow(s.db.ExecContext(ctx,
		`UPDATE locations SET latitude = ?, longitude = ? WHERE location_code = ?`, lat, lng, code))
}
