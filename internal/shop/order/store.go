package order

import (
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/domain"
)

// Store records finalized orders in memory. Whether the paid total matches
// a prior pricing computation is the checkout orchestration's concern, not
// the store's.
type Store struct {
	mu     sync.RWMutex
	orders map[domain.OrderID]domain.Order
}

func NewStore() *Store {
	return &Store{orders: make(map[domain.OrderID]domain.Order)}
}

// Create snapshots the cart, rounds the paid total to 2 decimal places and
// records the order as paid. It returns the generated order id.
func (s *Store) Create(email string, items domain.Cart, totalPaid decimal.Decimal) domain.OrderID {
	id := newOrderID()
	ord := domain.Order{
		ID:        id,
		Email:     email,
		Items:     items.Clone(),
		Total:     totalPaid.Round(2),
		Status:    domain.OrderStatusPaid,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.orders[id] = ord
	s.mu.Unlock()
	return id
}

func (s *Store) Status(id domain.OrderID) (domain.OrderStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ord, ok := s.orders[id]
	if !ok {
		return "", false
	}
	return ord.Status, true
}

// Get returns a copy of the order; the stored record stays immutable.
func (s *Store) Get(id domain.OrderID) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ord, ok := s.orders[id]
	if !ok {
		return domain.Order{}, false
	}
	ord.Items = ord.Items.Clone()
	return ord, true
}

// Len reports how many orders have been recorded.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

func newOrderID() domain.OrderID {
	u := uuid.New()
	return domain.OrderID("ord_" + hex.EncodeToString(u[:])[:12])
}
