package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/ports"
)

func seedOrder(t *testing.T, s *Store, id, user string, at time.Time) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder(domain.NewOrderParams{
		ID:              id,
		UserID:          user,
		Items:           []domain.Item{{ArtworkID: "art-1", Quantity: 1, PriceAtOrderTime: decimal.NewFromInt(100)}},
		PaymentMethod:   "card",
		ShippingAddress: domain.Address{Line1: "1 Main St", City: "Pune", Country: "IN"},
		TrackingNumber:  "TN1",
		Now:             at,
	})
	require.NoError(t, err)
	require.NoError(t, s.Create(context.Background(), order))
	return order
}

func TestStore_CreateAndGetReturnCopies(t *testing.T) {
	s := NewStore()
	order := seedOrder(t, s, "ORD-1", "user-1", time.Now())
	assert.Equal(t, int64(1), order.Version)

	loaded, err := s.Get(context.Background(), "ORD-1")
	require.NoError(t, err)
	loaded.Status = domain.StatusShipped
	*loaded.TrackingNumber = "mutated"

	again, err := s.Get(context.Background(), "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPlaced, again.Status)
	assert.Equal(t, "TN1", *again.TrackingNumber)

	require.ErrorIs(t, s.Create(context.Background(), order), ports.ErrAlreadyExists)
	_, err = s.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestStore_UpdateDiscardsFailedMutation(t *testing.T) {
	s := NewStore()
	seedOrder(t, s, "ORD-1", "user-1", time.Now())

	_, err := s.Update(context.Background(), "ORD-1", func(o *domain.Order) error {
		o.Status = domain.StatusShipped
		return errors.New("boom")
	})
	require.Error(t, err)

	loaded, err := s.Get(context.Background(), "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPlaced, loaded.Status)
	assert.Equal(t, int64(1), loaded.Version)
}

func TestStore_ListByUserNewestFirst(t *testing.T) {
	s := NewStore()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	seedOrder(t, s, "ORD-1", "user-1", base)
	seedOrder(t, s, "ORD-2", "user-1", base.Add(time.Hour))
	seedOrder(t, s, "ORD-3", "user-2", base.Add(2*time.Hour))

	list, err := s.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ORD-2", list[0].ID)
	assert.Equal(t, "ORD-1", list[1].ID)
}

func TestStore_ConcurrentCancellationsApplyOnce(t *testing.T) {
	s := NewStore()
	seedOrder(t, s, "ORD-1", "user-1", time.Now())
	reason := domain.ReasonChangedMind

	var wg sync.WaitGroup
	var succeeded, rejected int32
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Update(context.Background(), "ORD-1", func(o *domain.Order) error {
				return o.SetStatus(domain.StatusCancelled, domain.StatusChange{CancellationReason: &reason}, domain.RefundPaidOnly, time.Now())
			})
			if err == nil {
				atomic.AddInt32(&succeeded, 1)
			} else if errors.Is(err, domain.ErrInvalidTransition) {
				atomic.AddInt32(&rejected, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded)
	assert.Equal(t, int32(31), rejected)
	loaded, err := s.Get(context.Background(), "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), loaded.Version)
}
