package payment

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/domain"
)

// Gateway is the external payment collaborator. The core depends only on
// this contract; the simulated implementation below is swappable.
type Gateway interface {
	Charge(ctx context.Context, amount decimal.Decimal, provider string) domain.PaymentResult
}

// SimulatedGateway approves every positive charge after a fixed short
// delay. No real money moves.
type SimulatedGateway struct {
	Latency time.Duration
}

func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{Latency: 10 * time.Millisecond}
}

func (g *SimulatedGateway) Charge(ctx context.Context, amount decimal.Decimal, provider string) domain.PaymentResult {
	if amount.Sign() <= 0 {
		return domain.PaymentResult{OK: false, Reason: "invalid_amount"}
	}
	if g.Latency > 0 {
		select {
		case <-time.After(g.Latency):
		case <-ctx.Done():
			return domain.PaymentResult{OK: false, Reason: "cancelled"}
		}
	}
	return domain.PaymentResult{OK: true, TxID: provider + "_" + randomHex(10)}
}

func randomHex(n int) string {
	u := uuid.New()
	return hex.EncodeToString(u[:])[:n]
}
