//go:build integration
// +build integration

package redis_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	auctionsredis "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/adapters/redis"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/adapters/wire"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/domain"
	platformredis "github.com/Apurer/go-gin-artstore-api/internal/platform/redis"
)

func setupRedisContainer(t *testing.T) (*goredis.Client, func()) {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client, err := platformredis.Connect(ctx, endpoint)
	require.NoError(t, err)

	return client, func() {
		client.Close()
		container.Terminate(ctx)
	}
}

func TestLedger_ReserveIsCompareAndSet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client, cleanup := setupRedisContainer(t)
	defer cleanup()

	ledger := auctionsredis.NewLedger(client)
	ctx := context.Background()
	floor := decimal.NewFromInt(300)

	ok, current, err := ledger.Reserve(ctx, "A1", "bid-1", decimal.NewFromInt(250), floor)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, current.Equal(floor))

	ok, _, err = ledger.Reserve(ctx, "A1", "bid-2", decimal.RequireFromString("350.50"), floor)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, current, err = ledger.Reserve(ctx, "A1", "bid-3", decimal.NewFromInt(340), floor)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, current.Equal(decimal.RequireFromString("350.50")))

	amount, winner, err := ledger.Current(ctx, "A1")
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("350.50")))
	assert.Equal(t, "bid-2", winner)
}

func TestLedger_ReleaseRestoresOnlyItsOwnReservation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client, cleanup := setupRedisContainer(t)
	defer cleanup()

	ledger := auctionsredis.NewLedger(client)
	ctx := context.Background()
	floor := decimal.NewFromInt(300)

	ok, previous, err := ledger.Reserve(ctx, "A3", "bid-1", decimal.NewFromInt(10000), floor)
	require.NoError(t, err)
	require.True(t, ok)

	released, err := ledger.Release(ctx, "A3", "bid-1", previous, "")
	require.NoError(t, err)
	assert.True(t, released)

	amount, winner, err := ledger.Current(ctx, "A3")
	require.NoError(t, err)
	assert.True(t, amount.Equal(floor))
	assert.Empty(t, winner)

	ok, _, err = ledger.Reserve(ctx, "A3", "bid-2", decimal.NewFromInt(350), floor)
	require.NoError(t, err)
	assert.True(t, ok)

	released, err = ledger.Release(ctx, "A3", "bid-1", floor, "")
	require.NoError(t, err)
	assert.False(t, released)
	amount, winner, err = ledger.Current(ctx, "A3")
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(350)))
	assert.Equal(t, "bid-2", winner)
}

func TestLedger_ConcurrentReservationsAcceptEachAmountOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client, cleanup := setupRedisContainer(t)
	defer cleanup()

	ledger := auctionsredis.NewLedger(client)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _, err := ledger.Reserve(ctx, "A2", "bid", decimal.NewFromInt(500), decimal.NewFromInt(100))
			if err == nil && ok {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, accepted)
}

func TestPubSub_RelaysBidEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client, cleanup := setupRedisContainer(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan []byte, 1)
	sub := auctionsredis.NewSubscriber(client, nil)
	go func() {
		_ = sub.Listen(ctx, func(artworkID string, payload []byte) {
			if artworkID == "A1" {
				received <- payload
			}
		})
	}()

	pub := auctionsredis.NewPublisher(client)
	event := domain.BidPlaced{EventID: "e1", ArtworkID: "A1", BidID: "b1", UserID: "u1", Amount: decimal.NewFromInt(350), Timestamp: time.Now()}
	require.Eventually(t, func() bool {
		require.NoError(t, pub.Publish(ctx, event))
		select {
		case payload := <-received:
			var msg wire.BidEvent
			require.NoError(t, json.Unmarshal(payload, &msg))
			return msg.BidID == "b1" && msg.Amount == "350.00"
		case <-time.After(200 * time.Millisecond):
			return false
		}
	}, 10*time.Second, 100*time.Millisecond)
}
