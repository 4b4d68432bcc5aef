package orders

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
	orderactivities "github.com/Apurer/go-gin-artstore-api/internal/platform/temporal/activities/orders"
	"github.com/Apurer/go-gin-artstore-api/internal/platform/temporal/sequences"
)

const (
	// OrderCancellationWorkflowName is the public identifier for registering the workflow.
	OrderCancellationWorkflowName = "orders.workflows.Cancellation"
	// OrderCancellationTaskQueue is the queue consumed by the worker processing order workflows.
	OrderCancellationTaskQueue = "ORDER_CANCELLATION"
)

// OrderCancellationWorkflowInput captures the cancellation request and the originating trace.
type OrderCancellationWorkflowInput struct {
	Command orderactivities.CancelOrderCommand
	TraceID string
}

// OrderCancellationWorkflow cancels an order durably and returns the cancelled order.
func OrderCancellationWorkflow(ctx workflow.Context, input OrderCancellationWorkflowInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	orderID := input.Command.OrderID
	logger.Info("OrderCancellationWorkflow started", withTraceID(input.TraceID, "orderId", orderID)...)
	order, err := sequences.RunOrderCancellationSequence(ctx, input.Command)
	if err != nil {
		logger.Error("OrderCancellationWorkflow failed", withTraceID(input.TraceID, "orderId", orderID, "error", err)...)
		return nil, err
	}
	logger.Info("OrderCancellationWorkflow completed", withTraceID(input.TraceID, "orderId", order.ID, "paymentStatus", string(order.PaymentStatus))...)
	return order, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
