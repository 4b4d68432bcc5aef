package orders

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/adapters/memory"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/application"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/ports"
)

type staticCatalog struct{}

func (staticCatalog) Artwork(_ context.Context, id string) (ports.CatalogArtwork, error) {
	return ports.CatalogArtwork{ID: id, Title: "Dawn", ArtistID: "artist-1", Price: decimal.NewFromInt(250)}, nil
}

func placeOrder(t *testing.T, service ports.Service) *domain.Order {
	t.Helper()
	order, err := service.PlaceOrder(context.Background(), ports.PlaceOrderInput{
		UserID:          "user-1",
		Items:           []ports.PlaceOrderItem{{ArtworkID: "art-1", Quantity: 1}},
		PaymentMethod:   "card",
		ShippingAddress: domain.Address{Line1: "1 Main St", City: "Pune", Country: "IN"},
	})
	require.NoError(t, err)
	return order
}

func TestEncodeDecodeError_RoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		want    error
		invalid bool
	}{
		{name: "cancel not allowed", err: domain.ErrCancelNotAllowed, want: domain.ErrCancelNotAllowed},
		{name: "not found", err: fmt.Errorf("load: %w", ports.ErrNotFound), want: ports.ErrNotFound},
		{name: "guest", err: application.ErrAuthRequired, want: application.ErrAuthRequired},
		{
			name:    "missing reason",
			err:     fmt.Errorf("%w: %w", application.ErrInvalidInput, domain.ErrCancellationReasonRequired),
			want:    domain.ErrCancellationReasonRequired,
			invalid: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded := EncodeError(tc.err)
			var appErr *temporal.ApplicationError
			require.ErrorAs(t, encoded, &appErr)
			assert.True(t, appErr.NonRetryable())

			decoded := DecodeError(encoded)
			assert.ErrorIs(t, decoded, tc.want)
			assert.Equal(t, tc.invalid, errors.Is(decoded, application.ErrInvalidInput))
		})
	}

	plain := errors.New("connection reset")
	assert.Same(t, plain, EncodeError(plain))
	assert.Same(t, plain, DecodeError(plain))
	assert.NoError(t, EncodeError(nil))
	assert.NoError(t, DecodeError(nil))
}

func TestCommandFromInput(t *testing.T) {
	reason := domain.ReasonDuplicateOrder
	comments := "ordered twice"
	cmd := CommandFromInput(ports.SetStatusInput{
		OrderID: "ORD-1",
		UserID:  "user-1",
		Status:  domain.StatusCancelled,
		Change:  domain.StatusChange{CancellationReason: &reason, CancellationComments: &comments},
	})
	assert.Equal(t, domain.ReasonDuplicateOrder, cmd.Reason)

	input := cmd.Input()
	assert.Equal(t, domain.StatusCancelled, input.Status)
	require.NotNil(t, input.Change.CancellationReason)
	assert.Equal(t, reason, *input.Change.CancellationReason)
	assert.Equal(t, &comments, input.Change.CancellationComments)
}

func TestCancelOrderActivity(t *testing.T) {
	var suite testsuite.WorkflowTestSuite

	t.Run("cancels and refunds a paid order", func(t *testing.T) {
		service := application.NewService(memory.NewStore(), application.WithCatalog(staticCatalog{}))
		order := placeOrder(t, service)

		env := suite.NewTestActivityEnvironment()
		acts := NewActivities(service)
		env.RegisterActivity(acts)

		val, err := env.ExecuteActivity(acts.CancelOrder, CancelOrderCommand{
			OrderID: order.ID,
			UserID:  "user-1",
			Reason:  domain.ReasonChangedMind,
		})
		require.NoError(t, err)

		var cancelled domain.Order
		require.NoError(t, val.Get(&cancelled))
		assert.Equal(t, domain.StatusCancelled, cancelled.Status)
		assert.Equal(t, domain.PaymentRefunded, cancelled.PaymentStatus)
	})

	t.Run("rejection is non-retryable and decodes back", func(t *testing.T) {
		service := application.NewService(memory.NewStore(), application.WithCatalog(staticCatalog{}))
		order := placeOrder(t, service)
		_, err := service.SetStatus(context.Background(), ports.SetStatusInput{
			OrderID: order.ID, UserID: "user-1", Status: domain.StatusShipped,
		})
		require.NoError(t, err)

		env := suite.NewTestActivityEnvironment()
		acts := NewActivities(service)
		env.RegisterActivity(acts)

		_, err = env.ExecuteActivity(acts.CancelOrder, CancelOrderCommand{
			OrderID: order.ID,
			UserID:  "user-1",
			Reason:  domain.ReasonChangedMind,
		})
		require.Error(t, err)
		var appErr *temporal.ApplicationError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "CancelNotAllowed", appErr.Type())
		assert.ErrorIs(t, DecodeError(err), domain.ErrCancelNotAllowed)
	})
}
