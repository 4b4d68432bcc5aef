package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/ports"
)

// Service orchestrates the order lifecycle use cases.
type Service struct {
	store          ports.OrderStore
	catalog        ports.ArtworkCatalog
	publisher      ports.EventPublisher
	refundPolicy   domain.RefundPolicy
	now            func() time.Time
	newID          func(now time.Time) string
	onPublishError func(ctx context.Context, event domain.Event, err error)
}

type Option func(*Service)

// WithCatalog sets the artwork catalog used to snapshot order items.
func WithCatalog(catalog ports.ArtworkCatalog) Option {
	return func(s *Service) { s.catalog = catalog }
}

// WithEventPublisher ships domain events after each committed change.
func WithEventPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

// WithRefundPolicy selects how cancellation treats the payment status.
func WithRefundPolicy(policy domain.RefundPolicy) Option {
	return func(s *Service) {
		if policy != "" {
			s.refundPolicy = policy
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides order id generation.
func WithIDGenerator(fn func(now time.Time) string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithPublishErrorHandler observes events that could not be published. The change itself is already stored.
func WithPublishErrorHandler(fn func(ctx context.Context, event domain.Event, err error)) Option {
	return func(s *Service) {
		if fn != nil {
			s.onPublishError = fn
		}
	}
}

// NewService wires the orders service with its dependencies.
func NewService(store ports.OrderStore, opts ...Option) *Service {
	s := &Service{
		store:          store,
		refundPolicy:   domain.RefundPaidOnly,
		now:            time.Now,
		newID:          generateOrderID,
		onPublishError: func(context.Context, domain.Event, error) {},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// PlaceOrder snapshots catalog data into a new order in the placed state.
func (s *Service) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, ErrAuthRequired
	}
	if s.catalog == nil {
		return nil, errors.New("artwork catalog not configured")
	}
	items := make([]domain.Item, 0, len(input.Items))
	for _, line := range input.Items {
		artwork, err := s.catalog.Artwork(ctx, line.ArtworkID)
		if err != nil {
			return nil, mapError(fmt.Errorf("artwork %s: %w", line.ArtworkID, err))
		}
		items = append(items, domain.Item{
			ArtworkID:        artwork.ID,
			Quantity:         line.Quantity,
			PriceAtOrderTime: artwork.Price,
			Title:            artwork.Title,
			ArtistID:         artwork.ArtistID,
		})
	}
	now := s.now().UTC()
	order, err := domain.NewOrder(domain.NewOrderParams{
		ID:              s.newID(now),
		UserID:          input.UserID,
		Items:           items,
		Tax:             input.Tax,
		Shipping:        input.Shipping,
		Discount:        input.Discount,
		Currency:        input.Currency,
		PaymentMethod:   input.PaymentMethod,
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  input.BillingAddress,
		TrackingNumber:  fmt.Sprintf("TN%d", now.UnixMilli()),
		Now:             now,
	})
	if err != nil {
		return nil, mapError(err)
	}
	events := order.Events()
	order.ClearEvents()
	if err := s.store.Create(ctx, order); err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, events)
	return order, nil
}

// GetOrder loads an order owned by userID.
func (s *Service) GetOrder(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrAuthRequired
	}
	order, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, mapError(err)
	}
	if !order.OwnedBy(userID) {
		return nil, ports.ErrNotFound
	}
	return order, nil
}

// ListOrders returns the user's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrAuthRequired
	}
	orders, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}
	return orders, nil
}

// SetStatus applies a status transition atomically for the order.
func (s *Service) SetStatus(ctx context.Context, input ports.SetStatusInput) (*domain.Order, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, ErrAuthRequired
	}
	var events []domain.Event
	updated, err := s.store.Update(ctx, input.OrderID, func(order *domain.Order) error {
		if !order.OwnedBy(input.UserID) {
			return ports.ErrNotFound
		}
		if err := order.SetStatus(input.Status, input.Change, s.refundPolicy, s.now()); err != nil {
			return err
		}
		events = order.Events()
		order.ClearEvents()
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, events)
	return updated, nil
}

// UpdateOrderDetails changes the payment status or notes of an order.
func (s *Service) UpdateOrderDetails(ctx context.Context, input ports.UpdateDetailsInput) (*domain.Order, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, ErrAuthRequired
	}
	updated, err := s.store.Update(ctx, input.OrderID, func(order *domain.Order) error {
		if !order.OwnedBy(input.UserID) {
			return ports.ErrNotFound
		}
		now := s.now()
		if input.PaymentStatus != nil {
			if err := order.UpdatePaymentStatus(*input.PaymentStatus, now); err != nil {
				return err
			}
		}
		if input.Notes != nil {
			order.SetNotes(*input.Notes, now)
		}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

func (s *Service) publish(ctx context.Context, events []domain.Event) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		for _, event := range events {
			s.onPublishError(ctx, event, err)
		}
	}
}

func generateOrderID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}

var _ ports.Service = (*Service)(nil)
