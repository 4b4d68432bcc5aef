package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/ports"
	platformkafka "github.com/Apurer/go-gin-artstore-api/internal/platform/kafka"
)

// EventTypeHeader carries the event name so consumers can route without decoding the body.
const EventTypeHeader = "event-type"

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher writes order events to a Kafka topic keyed by order id.
type Publisher struct {
	writer MessageWriter
}

var _ ports.EventPublisher = (*Publisher)(nil)

func NewPublisher(writer MessageWriter) *Publisher {
	return &Publisher{writer: writer}
}

// Envelope is the JSON body of every order event message.
type Envelope struct {
	Type       string          `json:"type"`
	OrderID    string          `json:"orderId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

type placedPayload struct {
	UserID   string `json:"userId"`
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type statusChangedPayload struct {
	UserID        string `json:"userId"`
	From          string `json:"from"`
	To            string `json:"to"`
	PaymentStatus string `json:"paymentStatus"`
}

type refundPayload struct {
	UserID   string `json:"userId"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// Publish writes all events in one batch so their relative order is kept.
func (p *Publisher) Publish(ctx context.Context, events ...domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		msg, err := encode(ctx, event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write order events: %w", err)
	}
	return nil
}

func encode(ctx context.Context, event domain.Event) (kafka.Message, error) {
	var payload any
	switch e := event.(type) {
	case domain.OrderPlaced:
		payload = placedPayload{UserID: e.UserID, Total: e.Total.StringFixed(2), Currency: e.Currency}
	case domain.StatusChanged:
		payload = statusChangedPayload{UserID: e.UserID, From: string(e.From), To: string(e.To), PaymentStatus: string(e.PaymentStatus)}
	case domain.RefundRequested:
		payload = refundPayload{UserID: e.UserID, Amount: e.Amount.StringFixed(2), Currency: e.Currency}
	default:
		return kafka.Message{}, fmt.Errorf("unsupported order event %T", event)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, err
	}
	value, err := json.Marshal(Envelope{
		Type:       event.EventName(),
		OrderID:    event.AggregateID(),
		OccurredAt: event.OccurredAt().UTC(),
		Payload:    body,
	})
	if err != nil {
		return kafka.Message{}, err
	}
	headers := []kafka.Header{{Key: EventTypeHeader, Value: []byte(event.EventName())}}
	return kafka.Message{
		Key:     []byte(event.AggregateID()),
		Value:   value,
		Time:    event.OccurredAt().UTC(),
		Headers: platformkafka.InjectHeaders(ctx, headers),
	}, nil
}
