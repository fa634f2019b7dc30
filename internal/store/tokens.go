package store

import (
	"context"
	"time"
)

// RevokeToken records a revoked admin token id until it would have expired
// anyway, pruning entries that are already past expiry.
func (s *Store) RevokeToken(ctx context.Context, id string, expiresAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, formatTime(time.Now()),
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO revoked_tokens (id, expires_at) VALUES (?, ?)`,
		id, formatTime(expiresAt),
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) IsRevoked(ctx context.Context, id string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE id = ?)`, id,
	).Scan(&revoked)
	return revoked, err
}
