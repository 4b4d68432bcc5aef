package storefrontserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/adapters/http/mapper"
	ordersdomain "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/ports"
)

// OrderAPI wires HTTP transport with the orders bounded context service and workflows.
type OrderAPI struct {
	service   ordersports.Service
	workflows ordersports.WorkflowOrchestrator
}

// NewOrderAPI creates an OrderAPI. Cancellations run through workflows when it is set.
func NewOrderAPI(service ordersports.Service, workflows ordersports.WorkflowOrchestrator) OrderAPI {
	return OrderAPI{service: service, workflows: workflows}
}

// Post /v1/orders
// Places an order for catalog artworks
func (api *OrderAPI) PlaceOrder(c *gin.Context) {
	var payload orderhttpmapper.PlaceOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.BadRequest(c, err.Error())
		return
	}
	order, err := api.service.PlaceOrder(c.Request.Context(), orderhttpmapper.ToPlaceOrderInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromOrder(order))
}

// Get /v1/orders
// Lists the orders of a user, newest first
func (api *OrderAPI) ListOrders(c *gin.Context) {
	userID, ok := userIDQuery(c)
	if !ok {
		return
	}
	orders, err := api.service.ListOrders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromOrderList(orders))
}

// Get /v1/orders/:orderId
func (api *OrderAPI) GetOrder(c *gin.Context) {
	order, ok := api.loadOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromOrder(order))
}

// Get /v1/orders/:orderId/status
// Returns the order with its tracking progress
func (api *OrderAPI) GetOrderStatus(c *gin.Context) {
	order, ok := api.loadOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromOrderStatus(order))
}

// Put /v1/orders/:orderId/status
// Moves the order along its lifecycle or cancels it
func (api *OrderAPI) SetOrderStatus(c *gin.Context) {
	orderID, ok := pathParam(c, "orderId")
	if !ok {
		return
	}
	var payload orderhttpmapper.SetStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.BadRequest(c, err.Error())
		return
	}
	order, err := api.setStatus(c.Request.Context(), orderhttpmapper.ToSetStatusInput(orderID, payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromOrderStatus(order))
}

func (api *OrderAPI) setStatus(ctx context.Context, input ordersports.SetStatusInput) (*ordersdomain.Order, error) {
	if input.Status == ordersdomain.StatusCancelled && api.workflows != nil {
		return api.workflows.CancelOrder(ctx, input)
	}
	return api.service.SetStatus(ctx, input)
}

// Patch /v1/orders/:orderId
// Updates payment status or notes
func (api *OrderAPI) UpdateOrderDetails(c *gin.Context) {
	orderID, ok := pathParam(c, "orderId")
	if !ok {
		return
	}
	var payload orderhttpmapper.UpdateDetailsRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.BadRequest(c, err.Error())
		return
	}
	order, err := api.service.UpdateOrderDetails(c.Request.Context(), orderhttpmapper.ToUpdateDetailsInput(orderID, payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromOrder(order))
}

// Get /v1/orders/cancellation-reasons
func (api *OrderAPI) ListCancellationReasons(c *gin.Context) {
	c.JSON(http.StatusOK, orderhttpmapper.FromCancellationReasons(ordersdomain.CancellationReasons()))
}

func (api *OrderAPI) loadOrder(c *gin.Context) (*ordersdomain.Order, bool) {
	orderID, ok := pathParam(c, "orderId")
	if !ok {
		return nil, false
	}
	userID, ok := userIDQuery(c)
	if !ok {
		return nil, false
	}
	order, err := api.service.GetOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return order, true
}
