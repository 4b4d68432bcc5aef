package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers of every bounded context exposed over HTTP.
type ApiHandleFunctions struct {
	OrderAPI   OrderAPI
	AuctionAPI AuctionAPI
}

// NewRouter returns a new router. Middleware is installed before any route is registered.
func NewRouter(handleFunctions ApiHandleFunctions, middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware...)
	return NewRouterWithGinEngine(router, handleFunctions)
}

// NewRouterWithGinEngine adds the storefront routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		router.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	return router
}

// DefaultHandleFunc is the default handler for routes without an implementation.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// Healthz reports liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"Healthz", http.MethodGet, "/healthz", Healthz},
		{"PlaceOrder", http.MethodPost, "/v1/orders", handleFunctions.OrderAPI.PlaceOrder},
		{"ListOrders", http.MethodGet, "/v1/orders", handleFunctions.OrderAPI.ListOrders},
		{"ListCancellationReasons", http.MethodGet, "/v1/orders/cancellation-reasons", handleFunctions.OrderAPI.ListCancellationReasons},
		{"GetOrder", http.MethodGet, "/v1/orders/:orderId", handleFunctions.OrderAPI.GetOrder},
		{"UpdateOrderDetails", http.MethodPatch, "/v1/orders/:orderId", handleFunctions.OrderAPI.UpdateOrderDetails},
		{"GetOrderStatus", http.MethodGet, "/v1/orders/:orderId/status", handleFunctions.OrderAPI.GetOrderStatus},
		{"SetOrderStatus", http.MethodPut, "/v1/orders/:orderId/status", handleFunctions.OrderAPI.SetOrderStatus},
		{"ListArtwork", http.MethodPost, "/v1/auctions", handleFunctions.AuctionAPI.ListArtwork},
		{"ListAuctions", http.MethodGet, "/v1/auctions", handleFunctions.AuctionAPI.ListAuctions},
		{"GetAuction", http.MethodGet, "/v1/auctions/:artworkId", handleFunctions.AuctionAPI.GetAuction},
		{"PlaceBid", http.MethodPost, "/v1/auctions/:artworkId/bids", handleFunctions.AuctionAPI.PlaceBid},
		{"WatchAuction", http.MethodGet, "/v1/auctions/:artworkId/live", handleFunctions.AuctionAPI.WatchAuction},
	}
}
