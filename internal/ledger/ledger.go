package ledger

import (
	"context"
	"errors"

	"github.com/Abhi-Verma2005/OMS-sub001/internal/models"
)

var ErrNotFound = errors.New("order not found")

// SettleParams describes one provider outcome to materialize against
// an order: the transaction row to upsert and the status the order
// should land in.
type SettleParams struct {
	OrderID           string
	Provider          string
	ProviderReference string
	Amount            int64
	Currency          string
	TxStatus          models.TransactionStatus
	OrderStatus       models.OrderStatus
}

// SettleResult reports what a Settle call did. Applied is false when
// the order was already terminal — the no-op path that makes replayed
// and racing deliveries safe. OrderTotal always carries the ledger's
// own total so the caller can detect amount drift against the event.
type SettleResult struct {
	Applied     bool
	OrderStatus models.OrderStatus
	OrderTotal  int64
}

// Repository is the durable order ledger. All Order/Transaction
// mutation in the system goes through CreateOrder, DeleteOrder and
// Settle; nothing else writes these tables.
type Repository interface {
	// CreateOrder inserts a PENDING order and its items atomically.
	CreateOrder(ctx context.Context, o *models.Order, items []models.OrderItem) error

	// GetOrder returns the order with items and transactions loaded.
	GetOrder(ctx context.Context, id string) (*models.Order, error)

	// DeleteOrder removes an order that is still PENDING. Used only to
	// compensate a failed provider call right after eager creation.
	DeleteOrder(ctx context.Context, id string) error

	// ListByUser returns the user's orders newest first, each with
	// items and transactions.
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)

	// FindTransaction looks up the (provider, reference) idempotency
	// key. Returns (nil, nil) when no transaction exists.
	FindTransaction(ctx context.Context, provider, reference string) (*models.Transaction, error)

	// Settle performs the atomic read-modify-write of order state:
	// lock the order, no-op if terminal, upsert the transaction on its
	// unique constraint, transition the order status.
	Settle(ctx context.Context, p SettleParams) (SettleResult, error)
}
