package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/nazeru/shop-lab-ecommerce-go/pkg/contracts"
)

var ErrDisabled = errors.New("kafka disabled")

// Client is a thin wrapper over kafka-go. An empty broker list disables
// publishing, so the service runs without a broker by default.
type Client struct {
	Brokers []string
}

func NewClient(brokersCSV string) *Client {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return &Client{Brokers: brokers}
}

func (c *Client) Enabled() bool {
	return len(c.Brokers) > 0
}

// Publisher writes contracts.Event envelopes to a single topic.
type Publisher struct {
	writer *kafka.Writer
}

func (c *Client) NewPublisher(topic string) *Publisher {
	return &Publisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}}
}

// Publish wraps the payload in an event envelope keyed by order id,
// falling back to the event id for user-level events.
func (p *Publisher) Publish(ctx context.Context, eventType, orderID, txID string, payload map[string]any) error {
	evt := contracts.Event{
		EventID:   uuid.NewString(),
		OrderID:   orderID,
		TxID:      txID,
		CreatedAt: time.Now().UTC(),
		Type:      eventType,
		Payload:   payload,
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	key := evt.OrderID
	if key == "" {
		key = evt.EventID
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data, Time: evt.CreatedAt})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
