package payment

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCharge_NonPositiveAmountIsDeclined(t *testing.T) {
	g := NewSimulatedGateway()
	g.Latency = 0

	for _, amount := range []string{"0", "-1", "-0.01"} {
		res := g.Charge(context.Background(), decimal.RequireFromString(amount), "stripe")
		assert.False(t, res.OK, "amount %s", amount)
		assert.Equal(t, "invalid_amount", res.Reason)
		assert.Empty(t, res.TxID)
	}
}

func TestCharge_PositiveAmount(t *testing.T) {
	g := NewSimulatedGateway()
	g.Latency = 0

	res := g.Charge(context.Background(), decimal.RequireFromString("449.82"), "stripe")
	assert.True(t, res.OK)
	assert.Empty(t, res.Reason)
	assert.True(t, strings.HasPrefix(res.TxID, "stripe_"), "tx id %q", res.TxID)
	assert.Len(t, res.TxID, len("stripe_")+10)
}

func TestCharge_TxIDScopedToProvider(t *testing.T) {
	g := NewSimulatedGateway()
	g.Latency = 0

	res := g.Charge(context.Background(), decimal.NewFromInt(100), "paypal")
	assert.True(t, res.OK)
	assert.True(t, strings.HasPrefix(res.TxID, "paypal_"))
}

func TestCharge_CancelledContext(t *testing.T) {
	g := NewSimulatedGateway() // keeps the default latency so the select runs

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := g.Charge(ctx, decimal.NewFromInt(10), "stripe")
	assert.False(t, res.OK)
	assert.Equal(t, "cancelled", res.Reason)
}
