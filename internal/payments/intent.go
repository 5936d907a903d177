package payments

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/Abhi-Verma2005/OMS-sub001/internal/ledger"
	"github.com/Abhi-Verma2005/OMS-sub001/internal/metrics"
	"github.com/Abhi-Verma2005/OMS-sub001/internal/models"
)

// Service opens provider payment intents for validated carts. The
// backing order is always created (or verified) before the provider is
// called, so the webhook side always has a concrete order to target.
type Service struct {
	ledger    ledger.Repository
	client    IntentClient
	secretKey string
}

func NewService(l ledger.Repository, c IntentClient, secretKey string) *Service {
	return &Service{ledger: l, client: c, secretKey: secretKey}
}

type CreateIntentInput struct {
	UserID string
	Email  string
	// Items must already be validated; Total is the authoritative sum
	// computed by that validation, in minor units.
	Items           []models.CartItem
	Total           int64
	Currency        string
	ExistingOrderID string
}

type IntentResult struct {
	ClientSecret      string
	ProviderReference string
	OrderID           string
}

func (s *Service) CreateIntent(ctx context.Context, in CreateIntentInput) (*IntentResult, error) {
	if s.secretKey == "" {
		return nil, ErrProviderUnconfigured
	}

	orderID := in.ExistingOrderID
	createdHere := false

	if orderID != "" {
		// Ledger ids are UUIDs; reject junk before it reaches the
		// storage layer, where a failed uuid cast would surface as an
		// internal error instead of a client one.
		if _, err := uuid.Parse(orderID); err != nil {
			return nil, fmt.Errorf("%w: order id %q is not a valid id", ErrInvalidDraftOrder, orderID)
		}
		o, err := s.ledger.GetOrder(ctx, orderID)
		if err == ledger.ErrNotFound {
			return nil, fmt.Errorf("%w: order %s does not exist", ErrInvalidDraftOrder, orderID)
		}
		if err != nil {
			return nil, err
		}
		if o.UserID != in.UserID {
			return nil, fmt.Errorf("%w: order %s belongs to another user", ErrInvalidDraftOrder, orderID)
		}
		if o.Status != models.OrderPending {
			return nil, fmt.Errorf("%w: order %s is %s", ErrInvalidDraftOrder, orderID, o.Status)
		}
	} else {
		orderID = uuid.NewString()
	}

	// Encode before any write so a metadata failure never strands an
	// eagerly created order.
	md, err := IntentMetadata{
		Version:   MetadataVersion,
		UserID:    in.UserID,
		Email:     in.Email,
		OrderID:   orderID,
		OrderType: orderTypePlacement,
		Items:     in.Items,
	}.Encode()
	if err != nil {
		return nil, err
	}

	if in.ExistingOrderID == "" {
		order := &models.Order{
			ID:          orderID,
			UserID:      in.UserID,
			TotalAmount: in.Total,
			Currency:    in.Currency,
			Status:      models.OrderPending,
		}
		items := make([]models.OrderItem, 0, len(in.Items))
		for _, it := range in.Items {
			items = append(items, models.OrderItem{
				ID:         uuid.NewString(),
				OrderID:    orderID,
				SiteID:     it.SiteID,
				SiteName:   it.SiteName,
				PriceCents: it.PriceCents,
			})
		}
		if err := s.ledger.CreateOrder(ctx, order, items); err != nil {
			return nil, err
		}
		createdHere = true
	}

	intent, err := s.client.CreatePaymentIntent(ctx, in.Total, in.Currency, md)
	if err != nil {
		log.Printf("❌ Stripe error: %v", err)
		// Only compensate an order this very call created; a caller's
		// pre-existing draft stays PENDING for a fresh retry.
		if createdHere {
			if delErr := s.ledger.DeleteOrder(ctx, orderID); delErr != nil {
				log.Printf("⚠️ Cleanup of draft order %s failed: %v", orderID, delErr)
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderError, err)
	}

	metrics.IntentsCreated.Inc()
	log.Printf("💳 PaymentIntent created: %s (%d %s) for user %s", intent.ID, in.Total, in.Currency, in.UserID)

	return &IntentResult{
		ClientSecret:      intent.ClientSecret,
		ProviderReference: intent.ID,
		OrderID:           orderID,
	}, nil
}
