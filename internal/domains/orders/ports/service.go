package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
)

// SetStatusInput identifies the order, its owner and the requested transition.
type SetStatusInput struct {
	OrderID string
	UserID  string
	Status  domain.Status
	Change  domain.StatusChange
}

// PlaceOrderItem references a catalog artwork and a quantity.
type PlaceOrderItem struct {
	ArtworkID string
	Quantity  int32
}

// PlaceOrderInput is the checkout payload.
type PlaceOrderInput struct {
	UserID          string
	Items           []PlaceOrderItem
	Tax             decimal.Decimal
	Shipping        decimal.Decimal
	Discount        decimal.Decimal
	Currency        string
	PaymentMethod   string
	ShippingAddress domain.Address
	BillingAddress  *domain.Address
}

// UpdateDetailsInput changes payment status or notes without touching the status.
type UpdateDetailsInput struct {
	OrderID       string
	UserID        string
	PaymentStatus *domain.PaymentStatus
	Notes         *string
}

// Service exposes order use cases to adapters.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID, userID string) (*domain.Order, error)
	ListOrders(ctx context.Context, userID string) ([]*domain.Order, error)
	SetStatus(ctx context.Context, input SetStatusInput) (*domain.Order, error)
	UpdateOrderDetails(ctx context.Context, input UpdateDetailsInput) (*domain.Order, error)
}
