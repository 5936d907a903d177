package payments

import "errors"

var (
	// ErrProviderUnconfigured means the Stripe secret key is absent.
	// Operator action required; never retried.
	ErrProviderUnconfigured = errors.New("payment provider not configured")

	// ErrProviderError wraps a failed provider call. The whole intent
	// creation is safe to retry from scratch.
	ErrProviderError = errors.New("payment provider error")

	// ErrInvalidSignature marks a webhook delivery that failed
	// verification. The event is dropped unprocessed.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrInvalidDraftOrder means the caller-supplied order id does not
	// reference a PENDING order owned by the caller.
	ErrInvalidDraftOrder = errors.New("draft order unusable")

	// ErrMetadataInvalid marks intent metadata that cannot be decoded
	// into the expected schema.
	ErrMetadataInvalid = errors.New("invalid intent metadata")
)
