package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Abhi-Verma2005/OMS-sub001/internal/models"
)

// Memory is an in-process Repository with the same settle semantics as
// the Postgres implementation. It backs the test suites and local
// development without a database.
type Memory struct {
	mu     sync.Mutex
	orders map[string]*models.Order
	txns   map[string]*models.Transaction // keyed provider + "\x00" + reference
}

func NewMemory() *Memory {
	return &Memory{
		orders: make(map[string]*models.Order),
		txns:   make(map[string]*models.Transaction),
	}
}

func txnKey(provider, reference string) string {
	return provider + "\x00" + reference
}

func (m *Memory) CreateOrder(ctx context.Context, o *models.Order, items []models.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *o
	cp.Items = append([]models.OrderItem(nil), items...)
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	cp.UpdatedAt = cp.CreatedAt
	m.orders[cp.ID] = &cp
	return nil
}

func (m *Memory) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := m.snapshot(o)
	return &cp, nil
}

func (m *Memory) DeleteOrder(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok || o.Status != models.OrderPending {
		return ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *Memory) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, m.snapshot(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) FindTransaction(ctx context.Context, provider, reference string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.txns[txnKey(provider, reference)]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *Memory) Settle(ctx context.Context, p SettleParams) (SettleResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[p.OrderID]
	if !ok {
		return SettleResult{}, ErrNotFound
	}
	if o.Status.Terminal() {
		return SettleResult{Applied: false, OrderStatus: o.Status, OrderTotal: o.TotalAmount}, nil
	}

	key := txnKey(p.Provider, p.ProviderReference)
	if t, ok := m.txns[key]; ok {
		if t.Status == models.TransactionPending {
			t.Status = p.TxStatus
			t.Amount = p.Amount
		}
	} else {
		m.txns[key] = &models.Transaction{
			ID:                uuid.NewString(),
			OrderID:           p.OrderID,
			Provider:          p.Provider,
			ProviderReference: p.ProviderReference,
			Amount:            p.Amount,
			Currency:          p.Currency,
			Status:            p.TxStatus,
			CreatedAt:         time.Now(),
		}
	}

	total := o.TotalAmount
	o.Status = p.OrderStatus
	o.UpdatedAt = time.Now()
	return SettleResult{Applied: true, OrderStatus: p.OrderStatus, OrderTotal: total}, nil
}

// snapshot copies an order with its transactions attached, so callers
// never see later mutations. Caller holds the lock.
func (m *Memory) snapshot(o *models.Order) models.Order {
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	cp.Transactions = nil
	for _, t := range m.txns {
		if t.OrderID == o.ID {
			cp.Transactions = append(cp.Transactions, *t)
		}
	}
	return cp
}
