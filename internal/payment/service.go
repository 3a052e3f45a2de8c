// Package payment owns the order lifecycle: opening a provider order for a
// recipient, verifying the asynchronous payment callback, and serving the
// public supporter ledger.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log"

	"coffee-platform/internal/identity"
	"coffee-platform/internal/models"
	"coffee-platform/internal/store"
)

// TopSupportersLimit caps the public ledger read. Top 10 lifetime by amount,
// no pagination.
const TopSupportersLimit = 10

// Store is the persistence the service needs.
type Store interface {
	CreatePayment(ctx context.Context, p *models.Payment) error
	PaymentByOID(ctx context.Context, oid string) (*models.Payment, error)
	ConfirmPayment(ctx context.Context, oid string) (bool, error)
	TopSupporters(ctx context.Context, username string, limit int) ([]models.Payment, error)
}

// Resolver maps a recipient identifier to an account.
type Resolver interface {
	Resolve(ctx context.Context, identifier string) (*models.User, error)
}

// Alerter receives a best-effort notification when a payment is confirmed.
// It must not block.
type Alerter interface {
	PaymentConfirmed(username string, s Supporter)
}

// Note is the supporter-supplied display name and message attached to a
// payment.
type Note struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Supporter is one public ledger entry.
type Supporter struct {
	Name    string  `json:"name"`
	Amount  float64 `json:"amount"`
	Message string  `json:"message"`
}

// Config carries the process-wide payment policy.
type Config struct {
	Currency string
	// FallbackSecret is only consulted when AllowFallback is set and the
	// recipient has no secret of their own. Keep AllowFallback off outside
	// sandbox environments: a shared fallback weakens per-recipient
	// signature isolation.
	FallbackSecret string
	AllowFallback  bool
}

type Service struct {
	store    Store
	resolver Resolver
	provider OrderCreator
	alerter  Alerter
	cfg      Config
}

// NewService wires the payment pipeline. alerter may be nil.
func NewService(st Store, resolver Resolver, provider OrderCreator, alerter Alerter, cfg Config) *Service {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &Service{store: st, resolver: resolver, provider: provider, alerter: alerter, cfg: cfg}
}

// secretFor resolves the verification/initiation secret for a recipient:
// their own secret first, the process-wide fallback only when explicitly
// enabled. The secret value itself is never logged.
func (s *Service) secretFor(u *models.User) (string, bool) {
	if u.RazorpaySecret != "" {
		return u.RazorpaySecret, true
	}
	if s.cfg.AllowFallback && s.cfg.FallbackSecret != "" {
		log.Printf("payment: using fallback secret for user %s", u.Username)
		return s.cfg.FallbackSecret, true
	}
	return "", false
}

// Initiate opens a provider order for the recipient and records it as
// pending. amountMinor is in minor currency units (paise) and is passed to
// the provider exactly as given; the stored record holds major units.
func (s *Service) Initiate(ctx context.Context, amountMinor int64, recipient string, note Note) (Order, error) {
	user, err := s.resolver.Resolve(ctx, recipient)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return Order{}, ErrRecipientNotFound
		}
		return Order{}, fmt.Errorf("resolve recipient: %w", err)
	}

	if !user.AcceptsPayments() {
		return Order{}, ErrRecipientUnconfigured
	}
	secret, ok := s.secretFor(user)
	if !ok {
		return Order{}, ErrRecipientSecretMissing
	}

	order, err := s.provider.CreateOrder(ctx, user.RazorpayKeyID, secret, amountMinor, s.cfg.Currency)
	if err != nil {
		return Order{}, fmt.Errorf("%w: %v", ErrProviderOrder, err)
	}

	name := note.Name
	if name == "" {
		name = "Anonymous"
	}
	record := &models.Payment{
		OID:     order.ID,
		Amount:  float64(amountMinor) / 100,
		ToUser:  user.Username,
		Name:    name,
		Message: note.Message,
	}
	if err := s.store.CreatePayment(ctx, record); err != nil {
		// The provider order already exists and has no transactional
		// coupling to our store. Retrying creation risks a duplicate
		// charge, so the order is left orphaned and logged for
		// reconciliation.
		log.Printf("payment: ORPHANED ORDER %s for %s: record insert failed: %v", order.ID, user.Username, err)
		return Order{}, fmt.Errorf("%w: %v", ErrRecordPersist, err)
	}

	return order, nil
}

// Verify checks a payment callback against the recipient's secret and, on a
// valid signature, promotes the record to confirmed. The transition is
// one-way and idempotent: re-verifying a confirmed order succeeds without a
// second state change or alert.
func (s *Service) Verify(ctx context.Context, orderID, paymentID, signature string) error {
	record, err := s.store.PaymentByOID(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("load payment record: %w", err)
	}

	user, err := s.resolver.Resolve(ctx, record.ToUser)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return ErrRecipientNotFound
		}
		return fmt.Errorf("resolve recipient: %w", err)
	}

	// Checked after the lookups on purpose: an incomplete replay must be
	// rejected here no matter what was found above.
	if orderID == "" || paymentID == "" || signature == "" {
		return ErrMissingFields
	}

	secret, ok := s.secretFor(user)
	if !ok {
		log.Printf("payment: VERIFY ERROR: no secret available for user %s (order %s)", user.Username, orderID)
		return ErrSecretMissing
	}

	if !VerifySignature(orderID, paymentID, secret, signature) {
		// Security-relevant: either a forged callback or a misconfigured
		// key. State is untouched either way.
		log.Printf("payment: VERIFY FAILED: signature mismatch for order %s (user %s)", orderID, user.Username)
		return ErrVerificationFailed
	}

	if record.Done {
		return nil
	}

	changed, err := s.store.ConfirmPayment(ctx, orderID)
	if err != nil {
		// The payment was cryptographically valid but the local update did
		// not take. Surfaced as its own kind for manual reconciliation.
		log.Printf("payment: CONFIRM FAILED for verified order %s: %v", orderID, err)
		return fmt.Errorf("%w: %v", ErrConfirmFailed, err)
	}

	if changed && s.alerter != nil {
		s.alerter.PaymentConfirmed(user.Username, Supporter{
			Name:    record.Name,
			Amount:  record.Amount,
			Message: record.Message,
		})
	}
	return nil
}

// TopSupporters returns the confirmed payments for a recipient, amount
// descending, capped at TopSupportersLimit. No confirmed payments is an
// empty slice, not an error.
func (s *Service) TopSupporters(ctx context.Context, recipient string) ([]Supporter, error) {
	user, err := s.resolver.Resolve(ctx, recipient)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("resolve recipient: %w", err)
	}

	payments, err := s.store.TopSupporters(ctx, user.Username, TopSupportersLimit)
	if err != nil {
		return nil, err
	}

	supporters := make([]Supporter, 0, len(payments))
	for _, p := range payments {
		supporters = append(supporters, Supporter{Name: p.Name, Amount: p.Amount, Message: p.Message})
	}
	return supporters, nil
}
