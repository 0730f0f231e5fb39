package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/catalog"
	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/domain"
)

// Service validates cart mutations against the catalog and prices carts.
// The cart itself is caller-owned state; the service holds only the
// injected read-only tables.
type Service struct {
	catalog   *catalog.Catalog
	discounts *catalog.DiscountTable
}

func NewService(cat *catalog.Catalog, discounts *catalog.DiscountTable) *Service {
	return &Service{catalog: cat, discounts: discounts}
}

// Add increments c[sku] by qty, creating the entry if absent. Validation
// failures leave the cart untouched. The stock check compares qty against
// total catalog stock, not against stock remaining after what the cart
// already holds.
func (s *Service) Add(c domain.Cart, sku domain.SKU, qty int) error {
	product, ok := s.catalog.Get(sku)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSKUNotFound, sku)
	}
	if qty <= 0 {
		return fmt.Errorf("%w: got %d", domain.ErrInvalidQuantity, qty)
	}
	if qty > product.Stock {
		return fmt.Errorf("%w: %s has %d in stock, requested %d", domain.ErrInsufficientStock, sku, product.Stock, qty)
	}
	c[sku] += qty
	return nil
}

// Remove decrements c[sku] by qty and drops the entry when the quantity
// falls to zero or below. Removing an absent SKU is a no-op.
func (s *Service) Remove(c domain.Cart, sku domain.SKU, qty int) {
	if _, ok := c[sku]; !ok {
		return
	}
	c[sku] -= qty
	if c[sku] <= 0 {
		delete(c, sku)
	}
}

// Subtotal sums price*qty over the cart, rounded to 2 decimal places. SKUs
// no longer present in the catalog contribute nothing.
func (s *Service) Subtotal(c domain.Cart) decimal.Decimal {
	total := decimal.Zero
	for sku, qty := range c {
		product, ok := s.catalog.Get(sku)
		if !ok {
			continue
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total.Round(2)
}

// ApplyDiscount returns total*(1-percentOff(code)), rounded to 2 decimal
// places. An unknown code yields the rounded total unchanged.
func (s *Service) ApplyDiscount(total decimal.Decimal, code string) decimal.Decimal {
	pct := s.discounts.PercentOff(code)
	return total.Mul(decimal.NewFromInt(1).Sub(pct)).Round(2)
}
