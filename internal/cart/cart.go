package cart

import (
	"errors"

	"github.com/Abhi-Verma2005/OMS-sub001/internal/models"
	"github.com/Abhi-Verma2005/OMS-sub001/internal/money"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidLineItem = errors.New("invalid line item")
)

// Validate enforces the line-item invariants and computes the
// authoritative total in minor units. The product sells one placement
// per line item, so quantity must be exactly 1; a duplicate site in
// the list is a caller bug and is not merged here.
func Validate(items []models.CartItem) (int64, error) {
	if len(items) == 0 {
		return 0, ErrEmptyCart
	}

	var total int64
	for _, item := range items {
		if item.SiteID == "" {
			return 0, ErrInvalidLineItem
		}
		if item.Quantity != 1 {
			return 0, ErrInvalidLineItem
		}
		if item.PriceCents <= 0 {
			return 0, ErrInvalidLineItem
		}
		total += item.PriceCents
	}

	if total <= 0 {
		return 0, money.ErrInvalidAmount
	}
	return total, nil
}
