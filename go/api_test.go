package storefrontserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auctionsmemory "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/adapters/memory"
	auctionsapp "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/application"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/adapters/catalog"
	ordersmemory "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/adapters/memory"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/application"
	apierrors "github.com/Apurer/go-gin-artstore-api/internal/shared/errors"
)

var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	clock := func() time.Time { return testNow }
	auctions := auctionsapp.NewService(auctionsmemory.NewStore(), auctionsapp.WithClock(clock))
	orders := ordersapp.NewService(
		ordersmemory.NewStore(),
		ordersapp.WithCatalog(catalog.NewAuctions(auctions)),
		ordersapp.WithClock(clock),
	)
	return NewRouter(ApiHandleFunctions{
		OrderAPI:   NewOrderAPI(orders, workflows.NewInlineOrderWorkflows(orders)),
		AuctionAPI: NewAuctionAPI(auctions, nil),
	})
}

func do(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func listArtwork(t *testing.T, router *gin.Engine, body map[string]any) {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/v1/auctions", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func placeOrder(t *testing.T, router *gin.Engine) string {
	t.Helper()
	listArtwork(t, router, map[string]any{"id": "A1", "title": "Dusk", "artistId": "ar1", "price": "150.50"})
	rec := do(t, router, http.MethodPost, "/v1/orders", map[string]any{
		"userId":          "u1",
		"items":           []map[string]any{{"artworkId": "A1", "quantity": 2}},
		"tax":             "10",
		"paymentMethod":   "card",
		"shippingAddress": map[string]any{"line1": "1 Main St", "city": "Pune", "country": "IN"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[map[string]any](t, rec)
	totals := order["totals"].(map[string]any)
	assert.Equal(t, "311.00", totals["total"])
	return order["id"].(string)
}

func TestOrders_StatusProgressAndCancellation(t *testing.T) {
	router := newTestRouter(t)
	id := placeOrder(t, router)

	rec := do(t, router, http.MethodGet, "/v1/orders/"+id+"/status?userId=u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[map[string]any](t, rec)
	assert.EqualValues(t, 1, status["currentStep"])

	rec = do(t, router, http.MethodPut, "/v1/orders/"+id+"/status", map[string]any{
		"userId": "u1", "status": "confirmed",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPut, "/v1/orders/"+id+"/status", map[string]any{
		"userId": "u1", "status": "cancelled", "cancellationReason": "changed_mind",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	status = decode[map[string]any](t, rec)
	assert.EqualValues(t, 0, status["currentStep"])
	assert.Equal(t, true, status["cancelled"])
	order := status["order"].(map[string]any)
	assert.Equal(t, "refunded", order["paymentStatus"])
	assert.Nil(t, order["trackingNumber"])

	rec = do(t, router, http.MethodPut, "/v1/orders/"+id+"/status", map[string]any{
		"userId": "u1", "status": "cancelled", "cancellationReason": "changed_mind",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	problem := decode[apierrors.ProblemDetail](t, rec)
	assert.Equal(t, "Order cannot be cancelled at this stage", problem.Detail)
	assert.Equal(t, apierrors.TypeInvalidTransition, problem.Type)
}

func TestOrders_ErrorMapping(t *testing.T) {
	router := newTestRouter(t)
	id := placeOrder(t, router)

	rec := do(t, router, http.MethodGet, "/v1/orders/"+id+"?userId=someone-else", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/v1/orders/"+id, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "You must be logged in", decode[apierrors.ProblemDetail](t, rec).Detail)

	rec = do(t, router, http.MethodPut, "/v1/orders/"+id+"/status", map[string]any{"userId": "u1", "status": "cancelled"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPut, "/v1/orders/"+id+"/status", map[string]any{"userId": "u1", "status": "shipped"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodPut, "/v1/orders/"+id+"/status", map[string]any{"userId": "u1", "status": "packed"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestOrders_ListAndReasons(t *testing.T) {
	router := newTestRouter(t)
	placeOrder(t, router)

	rec := do(t, router, http.MethodGet, "/v1/orders?userId=u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = do(t, router, http.MethodGet, "/v1/orders/cancellation-reasons", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reasons := decode[[]map[string]string](t, rec)
	require.Len(t, reasons, 6)
	assert.Equal(t, "changed_mind", reasons[0]["value"])
}

func TestAuctions_BiddingFlow(t *testing.T) {
	router := newTestRouter(t)
	listArtwork(t, router, map[string]any{
		"id": "A1", "title": "Nocturne", "artistId": "ar1", "price": "500",
		"biddingEnabled": true, "startPrice": "300",
		"auctionEndDate": testNow.Add(2 * time.Hour).Format(time.RFC3339),
	})

	rec := do(t, router, http.MethodPost, "/v1/auctions/A1/bids", map[string]any{"userId": "u1", "userName": "Ana", "amount": "350"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	auction := decode[map[string]any](t, rec)
	assert.Equal(t, "350.00", auction["highestBid"])
	assert.Equal(t, "351.00", auction["minimumNextBid"])
	assert.Equal(t, "in about 2 hours", auction["timeRemaining"])

	rec = do(t, router, http.MethodPost, "/v1/auctions/A1/bids", map[string]any{"userId": "u2", "amount": "350"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	problem := decode[apierrors.ProblemDetail](t, rec)
	assert.Equal(t, "350.00", problem.Extensions["floor"])
	assert.Equal(t, "351.00", problem.Extensions["minimumBid"])

	rec = do(t, router, http.MethodPost, "/v1/auctions/A1/bids", map[string]any{"guest": true, "amount": "1000"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, http.MethodGet, "/v1/auctions/A1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	auction = decode[map[string]any](t, rec)
	bidder := auction["highestBidder"].(map[string]any)
	assert.Equal(t, "Ana", bidder["userName"])

	rec = do(t, router, http.MethodGet, "/v1/auctions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)
}

func TestAmountsInFractionsOfACentAreBadRequests(t *testing.T) {
	router := newTestRouter(t)
	listArtwork(t, router, map[string]any{
		"id": "A1", "title": "Nocturne", "artistId": "ar1", "price": "500",
		"biddingEnabled": true, "startPrice": "300",
	})

	for _, amount := range []string{"300.001", "300.004"} {
		rec := do(t, router, http.MethodPost, "/v1/auctions/A1/bids", map[string]any{"userId": "u1", "amount": amount})
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	}
	rec := do(t, router, http.MethodGet, "/v1/auctions/A1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "300.00", decode[map[string]any](t, rec)["highestBid"])

	rec = do(t, router, http.MethodPost, "/v1/auctions", map[string]any{"id": "A2", "title": "Dusk", "artistId": "ar1", "price": "99.999"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/v1/orders", map[string]any{
		"userId":          "u1",
		"items":           []map[string]any{{"artworkId": "A1", "quantity": 1}},
		"tax":             "0.125",
		"paymentMethod":   "card",
		"shippingAddress": map[string]any{"line1": "1 Main St", "city": "Pune", "country": "IN"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestAuctions_ClosedAndDisabled(t *testing.T) {
	router := newTestRouter(t)
	listArtwork(t, router, map[string]any{
		"id": "ended", "title": "Past", "artistId": "ar1", "price": "100",
		"biddingEnabled": true, "startPrice": "50",
		"auctionEndDate": testNow.Add(-time.Minute).Format(time.RFC3339),
	})
	listArtwork(t, router, map[string]any{"id": "fixed", "title": "Still", "artistId": "ar1", "price": "100"})

	rec := do(t, router, http.MethodPost, "/v1/auctions/ended/bids", map[string]any{"userId": "u1", "amount": "60"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apierrors.TypeAuctionClosed, decode[apierrors.ProblemDetail](t, rec).Type)

	rec = do(t, router, http.MethodPost, "/v1/auctions/fixed/bids", map[string]any{"userId": "u1", "amount": "600"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apierrors.TypeBiddingDisabled, decode[apierrors.ProblemDetail](t, rec).Type)

	rec = do(t, router, http.MethodGet, "/v1/auctions/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/v1/auctions/fixed/live", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
