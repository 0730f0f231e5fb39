package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/domain"
)

func TestList_ReturnsDefensiveCopy(t *testing.T) {
	cat := Default()

	listed := cat.List()
	listed["sku-001"] = domain.Product{SKU: "sku-001", Name: "tampered", Stock: 0}
	delete(listed, "sku-002")

	p, ok := cat.Get("sku-001")
	require.True(t, ok)
	assert.Equal(t, "Wireless Mouse", p.Name)
	assert.Equal(t, 42, p.Stock)

	_, ok = cat.Get("sku-002")
	assert.True(t, ok)
}

func TestGet_AbsentSKU(t *testing.T) {
	cat := Default()
	_, ok := cat.Get("sku-999")
	assert.False(t, ok)
}

func TestPercentOff(t *testing.T) {
	discounts := DefaultDiscounts()

	assert.True(t, discounts.PercentOff("WELCOME10").Equal(decimal.RequireFromString("0.10")))
	assert.True(t, discounts.PercentOff("SUMMER15").Equal(decimal.RequireFromString("0.15")))
	// Unknown codes are a no-op discount, not an error.
	assert.True(t, discounts.PercentOff("NOPE").IsZero())
	assert.True(t, discounts.PercentOff("").IsZero())
}
