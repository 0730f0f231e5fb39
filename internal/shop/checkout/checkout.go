package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/cart"
	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/domain"
	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/order"
	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/payment"
	"github.com/nazeru/shop-lab-ecommerce-go/pkg/logging"
)

// Service runs the checkout sequence: price the cart, charge the gateway,
// and only on a successful charge record the order.
type Service struct {
	cart    *cart.Service
	gateway payment.Gateway
	orders  *order.Store
}

func NewService(cartSvc *cart.Service, gateway payment.Gateway, orders *order.Store) *Service {
	return &Service{cart: cartSvc, gateway: gateway, orders: orders}
}

type Result struct {
	OrderID domain.OrderID
	TxID    string
	Total   decimal.Decimal
}

// Checkout prices the cart with the discount code applied and charges the
// configured provider. A declined payment aborts before any order is
// created and surfaces as domain.ErrPaymentDeclined.
func (s *Service) Checkout(ctx context.Context, email string, c domain.Cart, code, provider string) (Result, error) {
	start := time.Now()
	total := s.cart.ApplyDiscount(s.cart.Subtotal(c), code)

	res := s.gateway.Charge(ctx, total, provider)
	if !res.OK {
		logging.Log(logging.Fields{Service: "checkout", Email: email, Step: "charge", Status: "declined", Message: res.Reason})
		return Result{}, fmt.Errorf("%w: %s", domain.ErrPaymentDeclined, res.Reason)
	}

	orderID := s.orders.Create(email, c, total)
	logging.Log(logging.Fields{
		Service:    "checkout",
		OrderID:    string(orderID),
		TxID:       res.TxID,
		Email:      email,
		Step:       "order_create",
		Status:     string(domain.OrderStatusPaid),
		DurationMS: time.Since(start).Milliseconds(),
	})
	return Result{OrderID: orderID, TxID: res.TxID, Total: total}, nil
}
