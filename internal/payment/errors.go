package payment

import "errors"

// Every failure the service can report maps to exactly one of these kinds.
// Handlers translate kinds into statuses and short user-facing messages;
// the kinds themselves never carry secrets or raw store errors outward.
var (
	// Initiation.
	ErrRecipientNotFound      = errors.New("recipient not found")
	ErrRecipientUnconfigured  = errors.New("recipient has no payment key configured")
	ErrRecipientSecretMissing = errors.New("recipient has no payment secret available")
	ErrProviderOrder          = errors.New("provider order creation failed")
	ErrRecordPersist          = errors.New("payment record not persisted")

	// Verification. VerificationFailed and ConfirmFailed are deliberately
	// distinct: the first is a possible forgery, the second is a valid
	// payment whose local confirmation write did not take and needs
	// reconciliation.
	ErrOrderNotFound      = errors.New("order not found")
	ErrMissingFields      = errors.New("missing payment fields")
	ErrSecretMissing      = errors.New("no verification secret available")
	ErrVerificationFailed = errors.New("payment verification failed")
	ErrConfirmFailed      = errors.New("payment confirmation not persisted")
)
