package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is the base interface for all domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
	AggregateID() string
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// OrderPlaced is raised when checkout creates an order.
type OrderPlaced struct {
	BaseEvent
	OrderID  string
	UserID   string
	Total    decimal.Decimal
	Currency string
}

func (e OrderPlaced) EventName() string   { return "orders.order.placed" }
func (e OrderPlaced) AggregateID() string { return e.OrderID }

// StatusChanged is raised on every successful status transition.
type StatusChanged struct {
	BaseEvent
	OrderID       string
	UserID        string
	From          Status
	To            Status
	PaymentStatus PaymentStatus
}

func (e StatusChanged) EventName() string   { return "orders.order.status_changed" }
func (e StatusChanged) AggregateID() string { return e.OrderID }

// RefundRequested is raised when a cancellation moved the payment to refunded.
// The payment provider acts on it; this service only records the request.
type RefundRequested struct {
	BaseEvent
	OrderID  string
	UserID   string
	Amount   decimal.Decimal
	Currency string
}

func (e RefundRequested) EventName() string   { return "orders.order.refund_requested" }
func (e RefundRequested) AggregateID() string { return e.OrderID }
