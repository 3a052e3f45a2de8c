package store

import (
	"context"
	"time"
)

// ReplaceOtp drops any earlier codes for the email+username pair and stores
// a fresh one, so only the most recently mailed code can verify.
func (s *Store) ReplaceOtp(ctx context.Context, email, username, code string, expiresAt time.Time) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM otps WHERE email = $1 AND username = $2`, email, username,
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO otps (email, username, code, expires_at) VALUES ($1, $2, $3, $4)`,
		email, username, code, expiresAt,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// ConsumeOtp checks an unexpired code and deletes it on success, so a code
// verifies at most once.
func (s *Store) ConsumeOtp(ctx context.Context, email, username, code string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM otps
		WHERE email = $1 AND username = $2 AND code = $3 AND expires_at > now()
	`, email, username, code)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
