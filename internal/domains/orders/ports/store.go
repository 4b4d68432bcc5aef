package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
)

var (
	ErrNotFound         = errors.New("order not found")
	ErrAlreadyExists    = errors.New("order already exists")
	ErrConcurrentUpdate = errors.New("order was modified concurrently")
)

// MutateFunc changes a private copy of an order. Returning an error discards the change.
type MutateFunc func(order *domain.Order) error

// OrderStore persists orders. Update is serialized per order id.
type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) error
	Get(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	Update(ctx context.Context, id string, mutate MutateFunc) (*domain.Order, error)
}
