package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/ports"
)

const (
	// CancelOrderActivityName cancels an order through the orders service.
	CancelOrderActivityName = "orders.activities.CancelOrder"
)

// CancelOrderCommand is the serializable form of a cancellation request.
type CancelOrderCommand struct {
	OrderID  string
	UserID   string
	Reason   domain.CancellationReason
	Comments *string
}

// Input converts the command into the service request.
func (c CancelOrderCommand) Input() ports.SetStatusInput {
	reason := c.Reason
	return ports.SetStatusInput{
		OrderID: c.OrderID,
		UserID:  c.UserID,
		Status:  domain.StatusCancelled,
		Change: domain.StatusChange{
			CancellationReason:   &reason,
			CancellationComments: c.Comments,
		},
	}
}

// CommandFromInput builds a cancellation command from a status request.
func CommandFromInput(input ports.SetStatusInput) CancelOrderCommand {
	cmd := CancelOrderCommand{
		OrderID:  input.OrderID,
		UserID:   input.UserID,
		Comments: input.Change.CancellationComments,
	}
	if input.Change.CancellationReason != nil {
		cmd.Reason = *input.Change.CancellationReason
	}
	return cmd
}

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service ports.Service
}

// NewActivities wires the orders service into the Temporal activities bundle.
func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// CancelOrder cancels the order and returns its new state.
// A retry after a stored cancellation returns the stored order instead of a transition error.
func (a *Activities) CancelOrder(ctx context.Context, cmd CancelOrderCommand) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("cancel order activity not initialized", "orderId", cmd.OrderID)
		return nil, errors.New("cancel order activity not initialized")
	}

	var hb cancelHeartbeat
	if activity.HasHeartbeatDetails(ctx) {
		_ = activity.GetHeartbeatDetails(ctx, &hb)
	}
	if hb.Order != nil {
		logger.Info("CancelOrder already completed in prior attempt; skipping", "orderId", cmd.OrderID)
		return hb.Order, nil
	}

	logger.Info("CancelOrder activity started", "orderId", cmd.OrderID, "reason", string(cmd.Reason))
	order, err := a.service.SetStatus(ctx, cmd.Input())
	if err != nil {
		if errors.Is(err, domain.ErrCancelNotAllowed) && activity.GetInfo(ctx).Attempt > 1 {
			if current, getErr := a.service.GetOrder(ctx, cmd.OrderID, cmd.UserID); getErr == nil && current.Status == domain.StatusCancelled {
				logger.Info("CancelOrder found order cancelled by prior attempt", "orderId", cmd.OrderID)
				return current, nil
			}
		}
		logger.Error("CancelOrder activity failed", "orderId", cmd.OrderID, "error", err)
		return nil, EncodeError(err)
	}
	activity.RecordHeartbeat(ctx, cancelHeartbeat{Order: order})
	logger.Info("CancelOrder activity completed", "orderId", order.ID, "paymentStatus", string(order.PaymentStatus))
	return order, nil
}

type cancelHeartbeat struct {
	Order *domain.Order
}
