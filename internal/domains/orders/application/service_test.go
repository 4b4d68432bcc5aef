package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/ports"
)

type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[string]*domain.Order{}}
}

func (f *fakeOrderStore) Create(_ context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[order.ID]; ok {
		return ports.ErrAlreadyExists
	}
	f.orders[order.ID] = order.Clone()
	return nil
}

func (f *fakeOrderStore) Get(_ context.Context, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[id]; ok {
		return o.Clone(), nil
	}
	return nil, ports.ErrNotFound
}

func (f *fakeOrderStore) ListByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []*domain.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			list = append(list, o.Clone())
		}
	}
	return list, nil
}

func (f *fakeOrderStore) Update(_ context.Context, id string, mutate ports.MutateFunc) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	working := current.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	working.Version++
	f.orders[id] = working.Clone()
	return working, nil
}

type fakeCatalog map[string]ports.CatalogArtwork

func (f fakeCatalog) Artwork(_ context.Context, id string) (ports.CatalogArtwork, error) {
	if a, ok := f[id]; ok {
		return a, nil
	}
	return ports.CatalogArtwork{}, ports.ErrArtworkNotFound
}

type recordingPublisher struct {
	events []domain.Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, events ...domain.Event) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, events...)
	return nil
}

var fixedNow = time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)

func newTestService(store *fakeOrderStore, publisher *recordingPublisher, opts ...Option) *Service {
	catalog := fakeCatalog{
		"art-1": {ID: "art-1", Title: "Dawn", ArtistID: "artist-1", Price: decimal.NewFromInt(300)},
	}
	base := []Option{
		WithCatalog(catalog),
		WithEventPublisher(publisher),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func(time.Time) string { return "ORD-1" }),
	}
	return NewService(store, append(base, opts...)...)
}

func placeTestOrder(t *testing.T, svc *Service, method string) *domain.Order {
	t.Helper()
	order, err := svc.PlaceOrder(context.Background(), ports.PlaceOrderInput{
		UserID:          "user-123",
		Items:           []ports.PlaceOrderItem{{ArtworkID: "art-1", Quantity: 1}},
		PaymentMethod:   method,
		ShippingAddress: domain.Address{Line1: "1 Main St", City: "Pune", Country: "IN"},
	})
	require.NoError(t, err)
	return order
}

func cancelChange(r domain.CancellationReason) domain.StatusChange {
	return domain.StatusChange{CancellationReason: &r}
}

func TestPlaceOrder_SnapshotsCatalog(t *testing.T) {
	store := newFakeOrderStore()
	publisher := &recordingPublisher{}
	svc := newTestService(store, publisher)

	order := placeTestOrder(t, svc, "card")

	require.Len(t, order.Items, 1)
	assert.Equal(t, "Dawn", order.Items[0].Title)
	assert.True(t, order.Items[0].PriceAtOrderTime.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, "TN1718186400000", *order.TrackingNumber)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, "orders.order.placed", publisher.events[0].EventName())

	stored, err := store.Get(context.Background(), "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPlaced, stored.Status)
}

func TestPlaceOrder_UnknownArtwork(t *testing.T) {
	svc := newTestService(newFakeOrderStore(), &recordingPublisher{})
	_, err := svc.PlaceOrder(context.Background(), ports.PlaceOrderInput{
		UserID:          "user-123",
		Items:           []ports.PlaceOrderItem{{ArtworkID: "missing", Quantity: 1}},
		PaymentMethod:   "card",
		ShippingAddress: domain.Address{Line1: "x", City: "y", Country: "z"},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, ports.ErrArtworkNotFound)
}

func TestPlaceOrder_GuestRejected(t *testing.T) {
	svc := newTestService(newFakeOrderStore(), &recordingPublisher{})
	_, err := svc.PlaceOrder(context.Background(), ports.PlaceOrderInput{})
	require.ErrorIs(t, err, ErrAuthRequired)
}

func TestSetStatus_CancelPlacedOrder(t *testing.T) {
	store := newFakeOrderStore()
	publisher := &recordingPublisher{}
	svc := newTestService(store, publisher)
	placeTestOrder(t, svc, "card")
	publisher.events = nil

	updated, err := svc.SetStatus(context.Background(), ports.SetStatusInput{
		OrderID: "ORD-1",
		UserID:  "user-123",
		Status:  domain.StatusCancelled,
		Change:  cancelChange(domain.ReasonChangedMind),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, updated.Status)
	assert.Equal(t, domain.PaymentRefunded, updated.PaymentStatus)
	assert.Nil(t, updated.TrackingNumber)
	assert.Empty(t, updated.Events())

	require.Len(t, publisher.events, 2)
	assert.Equal(t, "orders.order.refund_requested", publisher.events[1].EventName())
}

func TestSetStatus_CancelPackedOrderFailsAndKeepsState(t *testing.T) {
	store := newFakeOrderStore()
	svc := newTestService(store, &recordingPublisher{})
	placeTestOrder(t, svc, "card")
	_, err := svc.SetStatus(context.Background(), ports.SetStatusInput{OrderID: "ORD-1", UserID: "user-123", Status: domain.StatusPacked})
	require.NoError(t, err)
	before, err := store.Get(context.Background(), "ORD-1")
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), ports.SetStatusInput{
		OrderID: "ORD-1",
		UserID:  "user-123",
		Status:  domain.StatusCancelled,
		Change:  cancelChange(domain.ReasonChangedMind),
	})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	require.NotErrorIs(t, err, ErrInvalidInput)

	after, err := store.Get(context.Background(), "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSetStatus_OwnerMismatchIsNotFound(t *testing.T) {
	svc := newTestService(newFakeOrderStore(), &recordingPublisher{})
	placeTestOrder(t, svc, "card")

	_, err := svc.SetStatus(context.Background(), ports.SetStatusInput{OrderID: "ORD-1", UserID: "someone-else", Status: domain.StatusConfirmed})
	require.ErrorIs(t, err, ports.ErrNotFound)

	_, err = svc.SetStatus(context.Background(), ports.SetStatusInput{OrderID: "ORD-404", UserID: "user-123", Status: domain.StatusConfirmed})
	require.ErrorIs(t, err, ports.ErrNotFound)

	_, err = svc.GetOrder(context.Background(), "ORD-1", "someone-else")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSetStatus_GuestRejected(t *testing.T) {
	svc := newTestService(newFakeOrderStore(), &recordingPublisher{})
	_, err := svc.SetStatus(context.Background(), ports.SetStatusInput{OrderID: "ORD-1", Status: domain.StatusConfirmed})
	require.ErrorIs(t, err, ErrAuthRequired)
}

func TestSetStatus_DeliveredTwiceKeepsFirstTimestamp(t *testing.T) {
	store := newFakeOrderStore()
	clock := fixedNow
	svc := newTestService(store, &recordingPublisher{}, WithClock(func() time.Time { return clock }))
	placeTestOrder(t, svc, "card")
	ctx := context.Background()

	_, err := svc.SetStatus(ctx, ports.SetStatusInput{OrderID: "ORD-1", UserID: "user-123", Status: domain.StatusShipped})
	require.NoError(t, err)

	clock = fixedNow.Add(24 * time.Hour)
	first, err := svc.SetStatus(ctx, ports.SetStatusInput{OrderID: "ORD-1", UserID: "user-123", Status: domain.StatusDelivered})
	require.NoError(t, err)
	require.NotNil(t, first.ActualDelivery)

	clock = fixedNow.Add(48 * time.Hour)
	second, err := svc.SetStatus(ctx, ports.SetStatusInput{OrderID: "ORD-1", UserID: "user-123", Status: domain.StatusDelivered})
	require.NoError(t, err)
	assert.Equal(t, *first.ActualDelivery, *second.ActualDelivery)
}

func TestSetStatus_InvalidStatusIsInvalidInput(t *testing.T) {
	svc := newTestService(newFakeOrderStore(), &recordingPublisher{})
	placeTestOrder(t, svc, "card")
	_, err := svc.SetStatus(context.Background(), ports.SetStatusInput{OrderID: "ORD-1", UserID: "user-123", Status: "lost"})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestSetStatus_PublishFailureDoesNotFailTransition(t *testing.T) {
	publisher := &recordingPublisher{}
	var failed []string
	svc := newTestService(newFakeOrderStore(), publisher, WithPublishErrorHandler(func(_ context.Context, evt domain.Event, _ error) {
		failed = append(failed, evt.EventName())
	}))
	placeTestOrder(t, svc, "card")
	publisher.err = errors.New("broker down")

	updated, err := svc.SetStatus(context.Background(), ports.SetStatusInput{OrderID: "ORD-1", UserID: "user-123", Status: domain.StatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)
	assert.Equal(t, []string{"orders.order.status_changed"}, failed)
}

func TestUpdateOrderDetails(t *testing.T) {
	svc := newTestService(newFakeOrderStore(), &recordingPublisher{})
	placeTestOrder(t, svc, "cod")
	paid := domain.PaymentPaid
	notes := "leave at the door"

	updated, err := svc.UpdateOrderDetails(context.Background(), ports.UpdateDetailsInput{
		OrderID:       "ORD-1",
		UserID:        "user-123",
		PaymentStatus: &paid,
		Notes:         &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, updated.PaymentStatus)
	assert.Equal(t, notes, *updated.Notes)
	assert.Equal(t, domain.StatusPlaced, updated.Status)
}

func TestListOrders_ScopedToUser(t *testing.T) {
	store := newFakeOrderStore()
	svc := newTestService(store, &recordingPublisher{})
	placeTestOrder(t, svc, "card")

	list, err := svc.ListOrders(context.Background(), "user-123")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = svc.ListOrders(context.Background(), "user-999")
	require.NoError(t, err)
	assert.Empty(t, list)
}
