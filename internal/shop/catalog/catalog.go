package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/domain"
)

// Catalog is a read-only product table. It is immutable after construction,
// so lookups need no locking.
type Catalog struct {
	products map[domain.SKU]domain.Product
}

func New(products ...domain.Product) *Catalog {
	m := make(map[domain.SKU]domain.Product, len(products))
	for _, p := range products {
		m[p.SKU] = p
	}
	return &Catalog{products: m}
}

// Default returns the seed catalog used by the demo service.
func Default() *Catalog {
	return New(
		domain.Product{SKU: "sku-001", Name: "Wireless Mouse", Price: decimal.RequireFromString("249.90"), Stock: 42},
		domain.Product{SKU: "sku-002", Name: "Mechanical Keyboard", Price: decimal.RequireFromString("999.00"), Stock: 8},
		domain.Product{SKU: "sku-003", Name: "USB-C Cable", Price: decimal.RequireFromString("99.00"), Stock: 120},
	)
}

// List returns a defensive copy; mutating the result does not affect the
// catalog.
func (c *Catalog) List() map[domain.SKU]domain.Product {
	out := make(map[domain.SKU]domain.Product, len(c.products))
	for sku, p := range c.products {
		out[sku] = p
	}
	return out
}

func (c *Catalog) Get(sku domain.SKU) (domain.Product, bool) {
	p, ok := c.products[sku]
	return p, ok
}
