package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is a single product held in a cart. UnitPriceAtAdd is the price
// snapshot taken when the item was added or last reconciled against the
// catalogue; it is the price the customer will be charged at checkout.
type CartItem struct {
	ProductID      uuid.UUID       `json:"productId" db:"product_id"`
	Name           string          `json:"name" db:"name"`
	UnitPriceAtAdd decimal.Decimal `json:"unitPriceAtAdd" db:"unit_price_at_add"`
	Quantity       int             `json:"quantity" db:"quantity"`
	AddedAt        time.Time       `json:"addedAt" db:"added_at"`
}

// Cart is a customer's working set of items. One cart per customer, created
// lazily on first add and emptied (never deleted) on checkout.
//
// PriceDrifted is sticky: reconciliation sets it whenever a stored price no
// longer matches the catalogue, and the first read that reports it clears it.
// PriceStale marks that the last reconciliation could not reach the catalogue
// and the stored prices are the last known ones.
type Cart struct {
	CustomerID       uuid.UUID  `json:"customerId" db:"customer_id"`
	Items            []CartItem `json:"items"`
	PriceDrifted     bool       `json:"priceDrifted" db:"price_drifted"`
	PriceStale       bool       `json:"priceStale" db:"price_stale"`
	LastReconciledAt time.Time  `json:"lastReconciledAt" db:"last_reconciled_at"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
}

// Item returns the cart item for the given product, or nil if absent.
func (c *Cart) Item(productID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// PriceUpdate records a reconciled price for a single cart item.
type PriceUpdate struct {
	ProductID uuid.UUID
	NewPrice  decimal.Decimal
}
