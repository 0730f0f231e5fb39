package catalog

import "github.com/shopspring/decimal"

// DiscountTable maps a code to the fraction taken off the total (0..1).
// Unknown codes are a no-op discount, not an error.
type DiscountTable struct {
	codes map[string]decimal.Decimal
}

func NewDiscountTable(codes map[string]decimal.Decimal) *DiscountTable {
	m := make(map[string]decimal.Decimal, len(codes))
	for code, pct := range codes {
		m[code] = pct
	}
	return &DiscountTable{codes: m}
}

func DefaultDiscounts() *DiscountTable {
	return NewDiscountTable(map[string]decimal.Decimal{
		"WELCOME10": decimal.RequireFromString("0.10"),
		"SUMMER15":  decimal.RequireFromString("0.15"),
	})
}

func (t *DiscountTable) PercentOff(code string) decimal.Decimal {
	if pct, ok := t.codes[code]; ok {
		return pct
	}
	return decimal.Zero
}
