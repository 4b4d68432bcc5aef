//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "artstore-api"
	ConsumerName = "artstore-web"

	StateCatalogListed = "artwork ART-101 is listed for sale"
	StateOrderExists   = "order ORD-PACT-1 exists for pact-user"
	StateOrderMissing  = "no order ORD-MISSING exists"
	StateAuctionOpen   = "auction ART-202 is open with a highest bid of 350.00"
)

const (
	UserID = "pact-user"

	ListedArtworkID  = "ART-101"
	AuctionArtworkID = "ART-202"

	ExistingOrderID = "ORD-PACT-1"
	MissingOrderID  = "ORD-MISSING"
)

const (
	ListedPrice = "120.00"
	HighestBid  = "350.00"
	NextBid     = "351.00"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the web storefront consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleAddress is the shipping address used by checkout interactions.
func ExampleAddress() map[string]any {
	return map[string]any{
		"name":       "Pact User",
		"line1":      "1 Gallery Row",
		"city":       "Lisbon",
		"postalCode": "1100-001",
		"country":    "PT",
	}
}

// ExampleCheckoutPayload buys one copy of the listed artwork with card payment.
func ExampleCheckoutPayload() map[string]any {
	return map[string]any{
		"userId":          UserID,
		"items":           []map[string]any{{"artworkId": ListedArtworkID, "quantity": 1}},
		"tax":             "10.00",
		"shipping":        "15.00",
		"discount":        "0",
		"currency":        "EUR",
		"paymentMethod":   "card",
		"shippingAddress": ExampleAddress(),
	}
}

// ExampleBidPayload outbids the seeded highest bid by the minimum increment.
func ExampleBidPayload() map[string]any {
	return map[string]any{
		"userId":   UserID,
		"userName": "Pact User",
		"amount":   NextBid,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
