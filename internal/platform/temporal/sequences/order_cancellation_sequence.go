package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
	orderactivities "github.com/Apurer/go-gin-artstore-api/internal/platform/temporal/activities/orders"
)

// CancelActivityOptions bounds the cancellation activity. Business rejections are non-retryable.
var CancelActivityOptions = workflow.ActivityOptions{
	StartToCloseTimeout: 30 * time.Second,
	HeartbeatTimeout:    10 * time.Second,
	RetryPolicy: &temporal.RetryPolicy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2.0,
		MaximumInterval:    10 * time.Second,
		MaximumAttempts:    5,
	},
}

// RunOrderCancellationSequence executes the activities that cancel an order.
func RunOrderCancellationSequence(ctx workflow.Context, cmd orderactivities.CancelOrderCommand) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("order cancellation sequence started", "orderId", cmd.OrderID)

	var order domain.Order
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, CancelActivityOptions), orderactivities.CancelOrderActivityName, cmd).Get(ctx, &order)
	if err != nil {
		logger.Error("order cancellation sequence failed", "orderId", cmd.OrderID, "error", err)
		return nil, err
	}
	if order.PaymentStatus == domain.PaymentRefunded {
		logger.Info("order cancellation sequence refunded payment", "orderId", order.ID)
	}
	logger.Info("order cancellation sequence completed", "orderId", order.ID)
	return &order, nil
}
