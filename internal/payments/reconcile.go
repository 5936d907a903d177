package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"

	"github.com/Abhi-Verma2005/OMS-sub001/internal/ledger"
	"github.com/Abhi-Verma2005/OMS-sub001/internal/metrics"
	"github.com/Abhi-Verma2005/OMS-sub001/internal/models"
)

type Outcome string

const (
	// OutcomeApplied: this delivery performed the state transition.
	OutcomeApplied Outcome = "applied"
	// OutcomeDuplicate: the transition already happened; safe no-op.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeIgnored: event type this system does not act on.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeAnomaly: verified event that cannot be reconciled
	// (missing order, broken metadata). Logged for manual review and
	// acknowledged so the provider stops redelivering.
	OutcomeAnomaly Outcome = "anomaly"
)

type ReconciliationResult struct {
	Outcome           Outcome
	EventType         string
	OrderID           string
	ProviderReference string
	AmountMismatch    bool
}

// Notifier is told about orders that just became PAID. Implementations
// must be best-effort; reconciliation never depends on them.
type Notifier interface {
	OrderPaid(order models.Order, email string)
}

// Reconciler turns at-least-once provider deliveries into exactly-once
// ledger transitions.
type Reconciler struct {
	ledger        ledger.Repository
	signingSecret string
	notifier      Notifier
}

func NewReconciler(l ledger.Repository, signingSecret string, n Notifier) *Reconciler {
	return &Reconciler{ledger: l, signingSecret: signingSecret, notifier: n}
}

// HandleEvent verifies and reconciles one raw webhook delivery.
//
// Error contract: ErrInvalidSignature means the delivery was rejected
// unprocessed; any other error is a transient storage failure and the
// provider should redeliver. Everything else — including anomalies —
// returns a result and nil so the HTTP layer acknowledges receipt.
func (r *Reconciler) HandleEvent(ctx context.Context, payload []byte, sigHeader string) (*ReconciliationResult, error) {
	if r.signingSecret == "" {
		// Without a signing secret nothing can be verified, and
		// unverified events are never accepted.
		log.Println("❌ STRIPE_WEBHOOK_SECRET not set — rejecting webhook")
		return nil, ErrInvalidSignature
	}

	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, r.signingSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		log.Printf("❌ Webhook signature verification failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	log.Printf("📥 Stripe event received: %s", event.Type)

	var txStatus models.TransactionStatus
	var orderStatus models.OrderStatus
	switch event.Type {
	case "payment_intent.succeeded":
		txStatus, orderStatus = models.TransactionSucceeded, models.OrderPaid
	case "payment_intent.payment_failed":
		txStatus, orderStatus = models.TransactionFailed, models.OrderFailed
	case "payment_intent.canceled":
		txStatus, orderStatus = models.TransactionFailed, models.OrderCancelled
	default:
		log.Printf("ℹ️ Event ignored: %s", event.Type)
		metrics.WebhookEvents.WithLabelValues(string(event.Type), string(OutcomeIgnored)).Inc()
		return &ReconciliationResult{Outcome: OutcomeIgnored, EventType: string(event.Type)}, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		log.Printf("❌ Cannot decode PaymentIntent from event %s: %v", event.ID, err)
		metrics.WebhookEvents.WithLabelValues(string(event.Type), string(OutcomeAnomaly)).Inc()
		return &ReconciliationResult{Outcome: OutcomeAnomaly, EventType: string(event.Type)}, nil
	}

	res := &ReconciliationResult{
		EventType:         string(event.Type),
		ProviderReference: pi.ID,
	}

	md, err := DecodeMetadata(pi.Metadata)
	if err != nil {
		// Permanent: redelivery cannot fix metadata written at intent
		// time, so acknowledge and flag for investigation.
		log.Printf("❌ Reconciliation anomaly on %s: %v", pi.ID, err)
		metrics.WebhookEvents.WithLabelValues(res.EventType, string(OutcomeAnomaly)).Inc()
		res.Outcome = OutcomeAnomaly
		return res, nil
	}
	res.OrderID = md.OrderID

	// Fast idempotency check before touching the order row.
	existing, err := r.ledger.FindTransaction(ctx, ProviderName, pi.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status != models.TransactionPending {
		log.Printf("🔁 Event for %s already reconciled, skipping", pi.ID)
		metrics.WebhookEvents.WithLabelValues(res.EventType, string(OutcomeDuplicate)).Inc()
		res.Outcome = OutcomeDuplicate
		return res, nil
	}

	settled, err := r.ledger.Settle(ctx, ledger.SettleParams{
		OrderID:           md.OrderID,
		Provider:          ProviderName,
		ProviderReference: pi.ID,
		Amount:            pi.Amount,
		Currency:          string(pi.Currency),
		TxStatus:          txStatus,
		OrderStatus:       orderStatus,
	})
	if errors.Is(err, ledger.ErrNotFound) {
		// Metadata points at an order that does not exist — an
		// upstream bug, not something redelivery can repair.
		log.Printf("❌ Order %s from intent %s metadata not found", md.OrderID, pi.ID)
		metrics.WebhookEvents.WithLabelValues(res.EventType, string(OutcomeAnomaly)).Inc()
		res.Outcome = OutcomeAnomaly
		return res, nil
	}
	if err != nil {
		return nil, err
	}

	if !settled.Applied {
		log.Printf("🔁 Order %s already %s, event %s is a no-op", md.OrderID, settled.OrderStatus, event.ID)
		metrics.WebhookEvents.WithLabelValues(res.EventType, string(OutcomeDuplicate)).Inc()
		res.Outcome = OutcomeDuplicate
		return res, nil
	}

	if pi.Amount != settled.OrderTotal {
		// Soft anomaly: the provider confirmed payment, so the order
		// still lands PAID/FAILED as reported; the drift is flagged
		// for manual review instead of failing the buyer's purchase.
		log.Printf("⚠️ Amount mismatch on %s: event %d vs order total %d", pi.ID, pi.Amount, settled.OrderTotal)
		metrics.AmountMismatches.Inc()
		res.AmountMismatch = true
	}

	metrics.WebhookEvents.WithLabelValues(res.EventType, string(OutcomeApplied)).Inc()
	log.Printf("✅ Order %s transitioned to %s (intent %s)", md.OrderID, orderStatus, pi.ID)

	if orderStatus == models.OrderPaid && r.notifier != nil && md.Email != "" {
		if order, err := r.ledger.GetOrder(ctx, md.OrderID); err == nil {
			r.notifier.OrderPaid(*order, md.Email)
		}
	}

	res.Outcome = OutcomeApplied
	return res, nil
}
