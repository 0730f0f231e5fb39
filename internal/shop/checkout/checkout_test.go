package checkout

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/cart"
	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/catalog"
	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/domain"
	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/order"
	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/payment"
)

// fakeGateway records the charge it saw and answers with a canned result.
type fakeGateway struct {
	result  domain.PaymentResult
	charged decimal.Decimal
	calls   int
}

func (g *fakeGateway) Charge(_ context.Context, amount decimal.Decimal, _ string) domain.PaymentResult {
	g.calls++
	g.charged = amount
	return g.result
}

func newFixture(gw payment.Gateway) (*Service, *order.Store) {
	orders := order.NewStore()
	cartSvc := cart.NewService(catalog.Default(), catalog.DefaultDiscounts())
	return NewService(cartSvc, gw, orders), orders
}

func TestCheckout_HappyPath(t *testing.T) {
	gw := &fakeGateway{result: domain.PaymentResult{OK: true, TxID: "stripe_abc123def4"}}
	svc, orders := newFixture(gw)

	c := domain.Cart{"sku-001": 2}
	res, err := svc.Checkout(context.Background(), "a@example.com", c, "WELCOME10", "stripe")
	require.NoError(t, err)

	// 2 * 249.90 = 499.80, minus 10% = 449.82: the charged amount and the
	// recorded total must both be the discounted figure.
	assert.True(t, gw.charged.Equal(decimal.RequireFromString("449.82")), "charged %s", gw.charged)
	assert.True(t, res.Total.Equal(decimal.RequireFromString("449.82")))
	assert.Equal(t, "stripe_abc123def4", res.TxID)

	status, ok := orders.Status(res.OrderID)
	require.True(t, ok)
	assert.Equal(t, domain.OrderStatusPaid, status)
}

func TestCheckout_DeclinedPayment_CreatesNoOrder(t *testing.T) {
	gw := &fakeGateway{result: domain.PaymentResult{OK: false, Reason: "invalid_amount"}}
	svc, orders := newFixture(gw)

	_, err := svc.Checkout(context.Background(), "a@example.com", domain.Cart{}, "", "stripe")
	require.ErrorIs(t, err, domain.ErrPaymentDeclined)
	assert.ErrorContains(t, err, "invalid_amount")
	assert.Equal(t, 1, gw.calls)

	// No order may exist without a prior successful payment.
	assert.Equal(t, 0, orders.Len())
}

func TestCheckout_EmptyCartIsDeclinedByRealGateway(t *testing.T) {
	gw := payment.NewSimulatedGateway()
	gw.Latency = 0
	svc, _ := newFixture(gw)

	// An empty cart prices to zero, which the gateway rejects.
	_, err := svc.Checkout(context.Background(), "a@example.com", domain.Cart{}, "", "stripe")
	require.ErrorIs(t, err, domain.ErrPaymentDeclined)
	assert.ErrorContains(t, err, "invalid_amount")
}

func TestCheckout_UnknownCodeChargesFullTotal(t *testing.T) {
	gw := &fakeGateway{result: domain.PaymentResult{OK: true, TxID: "stripe_0000000000"}}
	svc, _ := newFixture(gw)

	_, err := svc.Checkout(context.Background(), "a@example.com", domain.Cart{"sku-003": 1}, "NOPE", "stripe")
	require.NoError(t, err)
	assert.True(t, gw.charged.Equal(decimal.RequireFromString("99.00")))
}
