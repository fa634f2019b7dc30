package store

import (
	"context"

	"github.com/playperu/treasurehunt/internal/hunt"
)

func (s *Store) IsBanned(ctx context.Context, deviceID string) (bool, error) {
	var banned bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM banned_devices WHERE device_id = ?)`, deviceID,
	).Scan(&banned)
	return banned, err
}

func (s *Store) BanDevice(ctx context.Context, b hunt.BannedDevice) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO banned_devices (device_id, reason, banned_at) VALUES (?, ?, ?)`,
		b.DeviceID, b.Reason, formatTime(b.BannedAt))
	return err
}

func (s *Store) ListBans(ctx context.Context) ([]hunt.BannedDevice, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT device_id, reason, banned_at FROM banned_devices ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bans []hunt.BannedDevice
	for rows.Next() {
		var (
			b        hunt.BannedDevice
			bannedAt string
		)
		if err := rows.Scan(&b.DeviceID, &b.Reason, &bannedAt); err != nil {
			return nil, err
		}
		if b.BannedAt, err = parseTime(bannedAt); err != nil {
			return nil, err
		}
		bans = append(bans, b)
	}
	return bans, rows.Err()
}
