package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/catalog"
	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/domain"
)

func newTestService() *Service {
	return NewService(catalog.Default(), catalog.DefaultDiscounts())
}

func TestAdd_UnknownSKU(t *testing.T) {
	svc := newTestService()
	c := domain.Cart{}

	err := svc.Add(c, "sku-999", 1)
	assert.ErrorIs(t, err, domain.ErrSKUNotFound)
	assert.Empty(t, c)
}

func TestAdd_NonPositiveQuantity(t *testing.T) {
	svc := newTestService()
	c := domain.Cart{"sku-001": 1}

	assert.ErrorIs(t, svc.Add(c, "sku-001", 0), domain.ErrInvalidQuantity)
	assert.ErrorIs(t, svc.Add(c, "sku-001", -3), domain.ErrInvalidQuantity)
	assert.Equal(t, domain.Cart{"sku-001": 1}, c)
}

func TestAdd_InsufficientStock_LeavesCartUnchanged(t *testing.T) {
	svc := newTestService()
	c := domain.Cart{}

	// sku-002 has 8 in stock.
	err := svc.Add(c, "sku-002", 9)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Empty(t, c)

	require.NoError(t, svc.Add(c, "sku-002", 8))
	assert.Equal(t, domain.Cart{"sku-002": 8}, c)
}

func TestAdd_StockCheckIsNotCumulative(t *testing.T) {
	svc := newTestService()
	c := domain.Cart{}

	// Each call is checked against total catalog stock, not against stock
	// remaining after what the cart already holds.
	require.NoError(t, svc.Add(c, "sku-002", 8))
	require.NoError(t, svc.Add(c, "sku-002", 8))
	assert.Equal(t, 16, c["sku-002"])
}

func TestRemove(t *testing.T) {
	svc := newTestService()
	c := domain.Cart{"sku-001": 3}

	// Absent SKU is a no-op.
	svc.Remove(c, "sku-003", 1)
	assert.Equal(t, domain.Cart{"sku-001": 3}, c)

	svc.Remove(c, "sku-001", 1)
	assert.Equal(t, domain.Cart{"sku-001": 2}, c)

	// Dropping to zero or below deletes the key.
	svc.Remove(c, "sku-001", 5)
	assert.Empty(t, c)
}

func TestSubtotal_SkipsSKUsMissingFromCatalog(t *testing.T) {
	svc := newTestService()
	c := domain.Cart{"sku-003": 1, "sku-gone": 7}

	assert.True(t, svc.Subtotal(c).Equal(decimal.RequireFromString("99.00")))
}

func TestSubtotal_EmptyCart(t *testing.T) {
	svc := newTestService()
	assert.True(t, svc.Subtotal(domain.Cart{}).IsZero())
}

func TestCheckoutScenarioNumbers(t *testing.T) {
	svc := newTestService()
	c := domain.Cart{}

	require.NoError(t, svc.Add(c, "sku-001", 2))

	subtotal := svc.Subtotal(c)
	assert.True(t, subtotal.Equal(decimal.RequireFromString("499.80")), "got %s", subtotal)

	total := svc.ApplyDiscount(subtotal, "WELCOME10")
	assert.True(t, total.Equal(decimal.RequireFromString("449.82")), "got %s", total)
}

func TestApplyDiscount_UnknownCodeIsRoundedIdentity(t *testing.T) {
	svc := newTestService()

	total := decimal.RequireFromString("123.456")
	assert.True(t, svc.ApplyDiscount(total, "NOPE").Equal(decimal.RequireFromString("123.46")))
	assert.True(t, svc.ApplyDiscount(decimal.RequireFromString("499.80"), "").Equal(decimal.RequireFromString("499.80")))
}
