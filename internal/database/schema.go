package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The unique constraint on (provider, provider_reference) is the
// idempotency key for webhook replay. It must stay a storage-level
// constraint so two concurrent deliveries of the same event race on
// the index, not on an application check-then-insert.
const schema = `
CREATE TABLE IF NOT EXISTS orders (
	id            UUID PRIMARY KEY,
	user_id       TEXT NOT NULL,
	total_amount  BIGINT NOT NULL CHECK (total_amount >= 1),
	currency      TEXT NOT NULL,
	status        TEXT NOT NULL DEFAULT 'PENDING',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_orders_user_created
	ON orders (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS order_items (
	id           UUID PRIMARY KEY,
	order_id     UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	site_id      TEXT NOT NULL,
	site_name    TEXT NOT NULL DEFAULT '',
	price_cents  BIGINT NOT NULL CHECK (price_cents >= 1)
);

CREATE INDEX IF NOT EXISTS idx_order_items_order
	ON order_items (order_id);

CREATE TABLE IF NOT EXISTS transactions (
	id                  UUID PRIMARY KEY,
	order_id            UUID NOT NULL REFERENCES orders(id),
	provider            TEXT NOT NULL,
	provider_reference  TEXT NOT NULL,
	amount              BIGINT NOT NULL,
	currency            TEXT NOT NULL,
	status              TEXT NOT NULL DEFAULT 'PENDING',
	created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (provider, provider_reference)
);

CREATE INDEX IF NOT EXISTS idx_transactions_order
	ON transactions (order_id);
`

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
