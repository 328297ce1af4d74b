package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type OrderPlacedItem struct {
	ProductID string `json:"product_id"`
	BookName  string `json:"book_name"`
	Quantity  int    `json:"quantity"`
}

// OrderPlacedEvent is published after the Order API accepts an order.
type OrderPlacedEvent struct {
	EventID    string            `json:"event_id"`
	OwnerID    string            `json:"owner_id"`
	OrderID    string            `json:"order_id"`
	TotalPrice float64           `json:"total_price"`
	Currency   string            `json:"currency"`
	Items      []OrderPlacedItem `json:"items"`
	PlacedAt   time.Time         `json:"placed_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Publisher struct {
	writer messageWriter
	closer func() error
}

func NewPublisher(brokers ...string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-placed",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, closer: w.Close}
}

// OrderPlaced publishes the event keyed by owner so per-owner ordering
// is preserved. Callers treat failures as non-fatal: the order already
// exists by the time this runs.
func (p *Publisher) OrderPlaced(ctx context.Context, event OrderPlacedEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OwnerID),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event %v: %w", event.EventID, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}
