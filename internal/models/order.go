package models

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderFailed    OrderStatus = "FAILED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Terminal reports whether the status is final. A terminal order never
// changes status again, whatever the provider sends afterwards.
func (s OrderStatus) Terminal() bool {
	return s == OrderPaid || s == OrderFailed || s == OrderCancelled
}

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "PENDING"
	TransactionSucceeded TransactionStatus = "SUCCEEDED"
	TransactionFailed    TransactionStatus = "FAILED"
)

type Order struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	TotalAmount  int64         `json:"total_amount"` // minor units
	Currency     string        `json:"currency"`
	Status       OrderStatus   `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Items        []OrderItem   `json:"items"`
	Transactions []Transaction `json:"transactions"`
}

// OrderItem is a snapshot of the catalog entry at purchase time.
// The catalog may change later without touching historical orders.
type OrderItem struct {
	ID         string `json:"id"`
	OrderID    string `json:"order_id"`
	SiteID     string `json:"site_id"`
	SiteName   string `json:"site_name"`
	PriceCents int64  `json:"price_cents"`
}

type Transaction struct {
	ID                string            `json:"id"`
	OrderID           string            `json:"order_id"`
	Provider          string            `json:"provider"`
	ProviderReference string            `json:"provider_reference"`
	Amount            int64             `json:"amount"`
	Currency          string            `json:"currency"`
	Status            TransactionStatus `json:"status"`
	CreatedAt         time.Time         `json:"created_at"`
}
