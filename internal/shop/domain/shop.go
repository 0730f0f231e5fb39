package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SKU string
type OrderID string

type OrderStatus string

const (
	// Orders are created only after a successful charge, so "paid" is the
	// single (terminal) status.
	OrderStatusPaid OrderStatus = "paid"
)

type Product struct {
	SKU   SKU
	Name  string
	Price decimal.Decimal
	Stock int
}

// Cart maps a SKU to the desired quantity. Quantities are always positive;
// an absent key is equivalent to quantity zero.
type Cart map[SKU]int

// Clone returns an independent copy of the cart.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for sku, qty := range c {
		out[sku] = qty
	}
	return out
}

type Order struct {
	ID     OrderID
	Email  string
	Items  Cart // snapshot taken at creation
	Total  decimal.Decimal
	Status OrderStatus

	CreatedAt time.Time
}

type PaymentResult struct {
	OK     bool
	TxID   string // set iff OK
	Reason string // set iff !OK
}
