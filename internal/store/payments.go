package store

import (
	"context"
	"database/sql"
	"errors"

	"coffee-platform/internal/models"
)

// CreatePayment persists a pending record for a freshly opened provider
// order. The unique constraint on oid guarantees one record per order.
func (s *Store) CreatePayment(ctx context.Context, p *models.Payment) error {
	query := `
		INSERT INTO payments (oid, amount, to_user, name, message, done)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING id, created_at, updated_at
	`
	return s.db.QueryRowxContext(ctx, query,
		p.OID, p.Amount, p.ToUser, p.Name, p.Message,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// PaymentByOID looks up the record for one provider order.
func (s *Store) PaymentByOID(ctx context.Context, oid string) (*models.Payment, error) {
	var p models.Payment
	query := `SELECT * FROM payments WHERE oid = $1`
	err := s.db.GetContext(ctx, &p, query, oid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ConfirmPayment flips a pending record to confirmed. The single UPDATE is
// the atomicity guarantee for concurrent webhook retries: only one caller
// observes changed=true, everyone else lands on the same terminal state.
func (s *Store) ConfirmPayment(ctx context.Context, oid string) (changed bool, err error) {
	query := `UPDATE payments SET done = TRUE, updated_at = now() WHERE oid = $1 AND NOT done`
	res, err := s.db.ExecContext(ctx, query, oid)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// TopSupporters returns the confirmed payments for a handle, largest first,
// capped at limit. Pending rows never appear.
func (s *Store) TopSupporters(ctx context.Context, username string, limit int) ([]models.Payment, error) {
	payments := []models.Payment{}
	query := `
		SELECT * FROM payments
		WHERE to_user = $1 AND done
		ORDER BY amount DESC
		LIMIT $2
	`
	if err := s.db.SelectContext(ctx, &payments, query, username, limit); err != nil {
		return nil, err
	}
	return payments, nil
}

// PaymentsForUser returns every payment addressed to a handle, newest first,
// pending included. This feeds the creator's own dashboard only.
func (s *Store) PaymentsForUser(ctx context.Context, username string) ([]models.Payment, error) {
	payments := []models.Payment{}
	query := `SELECT * FROM payments WHERE to_user = $1 ORDER BY created_at DESC`
	if err := s.db.SelectContext(ctx, &payments, query, username); err != nil {
		return nil, err
	}
	return payments, nil
}
