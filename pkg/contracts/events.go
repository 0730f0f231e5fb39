package contracts

import "time"

// Event is the envelope published to the event stream when one is
// configured. Payload keys are event-specific.
type Event struct {
	EventID   string         `json:"event_id"`
	OrderID   string         `json:"order_id,omitempty"`
	TxID      string         `json:"tx_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
}

const (
	EventUserRegistered  = "user.registered"
	EventOrderCreated    = "order.created"
	EventPaymentCaptured = "payment.captured"
)
