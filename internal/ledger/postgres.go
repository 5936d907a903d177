package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Abhi-Verma2005/OMS-sub001/internal/models"
)

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) CreateOrder(ctx context.Context, o *models.Order, items []models.OrderItem) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
    INSERT INTO orders (id, user_id, total_amount, currency, status, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,NOW(),NOW())
  `, o.ID, o.UserID, o.TotalAmount, o.Currency, o.Status); err != nil {
		return err
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `
      INSERT INTO order_items (id, order_id, site_id, site_name, price_cents)
      VALUES ($1,$2,$3,$4,$5)
    `, it.ID, o.ID, it.SiteID, it.SiteName, it.PriceCents); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	err := r.db.QueryRow(ctx, `
    SELECT id, user_id, total_amount, currency, status, created_at, updated_at
    FROM orders WHERE id=$1
  `, id).Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.Currency, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if o.Items, err = r.itemsFor(ctx, o.ID); err != nil {
		return nil, err
	}
	if o.Transactions, err = r.transactionsFor(ctx, o.ID); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGRepo) DeleteOrder(ctx context.Context, id string) error {
	// Items go with the order via ON DELETE CASCADE. The status guard
	// keeps compensation from ever touching a settled order.
	tag, err := r.db.Exec(ctx, `
    DELETE FROM orders WHERE id=$1 AND status=$2
  `, id, models.OrderPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	rows, err := r.db.Query(ctx, `
    SELECT id, user_id, total_amount, currency, status, created_at, updated_at
    FROM orders WHERE user_id=$1
    ORDER BY created_at DESC
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.Currency, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Items, err = r.itemsFor(ctx, out[i].ID); err != nil {
			return nil, err
		}
		if out[i].Transactions, err = r.transactionsFor(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *PGRepo) FindTransaction(ctx context.Context, provider, reference string) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.QueryRow(ctx, `
    SELECT id, order_id, provider, provider_reference, amount, currency, status, created_at
    FROM transactions WHERE provider=$1 AND provider_reference=$2
  `, provider, reference).Scan(&t.ID, &t.OrderID, &t.Provider, &t.ProviderReference, &t.Amount, &t.Currency, &t.Status, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PGRepo) Settle(ctx context.Context, p SettleParams) (SettleResult, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return SettleResult{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status models.OrderStatus
	var total int64
	err = tx.QueryRow(ctx, `
    SELECT status, total_amount FROM orders WHERE id=$1 FOR UPDATE
  `, p.OrderID).Scan(&status, &total)
	if errors.Is(err, pgx.ErrNoRows) {
		return SettleResult{}, ErrNotFound
	}
	if err != nil {
		return SettleResult{}, err
	}

	// Terminal orders are never transitioned again; the caller treats
	// this as the duplicate-delivery no-op.
	if status.Terminal() {
		return SettleResult{Applied: false, OrderStatus: status, OrderTotal: total}, nil
	}

	// The unique (provider, provider_reference) constraint makes this
	// upsert the actual idempotency race arbiter: of two concurrent
	// deliveries, one inserts, the other conflicts and only ever
	// overwrites a still-PENDING row.
	if _, err := tx.Exec(ctx, `
    INSERT INTO transactions (id, order_id, provider, provider_reference, amount, currency, status, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
    ON CONFLICT (provider, provider_reference)
    DO UPDATE SET status = EXCLUDED.status, amount = EXCLUDED.amount
    WHERE transactions.status = 'PENDING'
  `, uuid.NewString(), p.OrderID, p.Provider, p.ProviderReference, p.Amount, p.Currency, p.TxStatus); err != nil {
		return SettleResult{}, fmt.Errorf("upsert transaction: %w", err)
	}

	if _, err := tx.Exec(ctx, `
    UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2
  `, p.OrderStatus, p.OrderID); err != nil {
		return SettleResult{}, fmt.Errorf("transition order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return SettleResult{}, err
	}
	return SettleResult{Applied: true, OrderStatus: p.OrderStatus, OrderTotal: total}, nil
}

func (r *PGRepo) itemsFor(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	rows, err := r.db.Query(ctx, `
    SELECT id, order_id, site_id, site_name, price_cents
    FROM order_items WHERE order_id=$1
  `, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.SiteID, &it.SiteName, &it.PriceCents); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PGRepo) transactionsFor(ctx context.Context, orderID string) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx, `
    SELECT id, order_id, provider, provider_reference, amount, currency, status, created_at
    FROM transactions WHERE order_id=$1 ORDER BY created_at DESC
  `, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.OrderID, &t.Provider, &t.ProviderReference, &t.Amount, &t.Currency, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}
