package payments

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
)

// IntentClient is the provider call boundary. Kept minimal so tests
// can fake Stripe without network access.
type IntentClient interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*stripe.PaymentIntent, error)
}

// StripeClient opens real payment intents. Every call is bounded by
// the configured timeout so checkout never hangs on the provider.
type StripeClient struct {
	timeout time.Duration
}

func NewStripeClient(timeout time.Duration) *StripeClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &StripeClient{timeout: timeout}
}

func (s *StripeClient) CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: metadata,
	}
	params.Context = ctx

	return paymentintent.New(params)
}
