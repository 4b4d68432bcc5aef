//go:build integration
// +build integration

package nats_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	auctionsnats "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/adapters/events/nats"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/adapters/wire"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/domain"
	platformnats "github.com/Apurer/go-gin-artstore-api/internal/platform/nats"
)

func TestPublisher_StoresBidsInStream(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "nats:2.10-alpine",
			Cmd:          []string{"-js"},
			ExposedPorts: []string{"4222/tcp"},
			WaitingFor:   wait.ForLog("Server is ready").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer container.Terminate(ctx)

	endpoint, err := container.Endpoint(ctx, "nats")
	require.NoError(t, err)
	conn, js, err := platformnats.Connect(endpoint, "artstore-test")
	require.NoError(t, err)
	defer conn.Close()

	_, err = auctionsnats.EnsureStream(ctx, js, time.Hour)
	require.NoError(t, err)

	pub := auctionsnats.NewPublisher(js)
	for i := 1; i <= 2; i++ {
		err := pub.Publish(ctx, domain.BidPlaced{
			EventID:   fmt.Sprintf("evt-%d", i),
			ArtworkID: "A1",
			BidID:     fmt.Sprintf("bid-%d", i),
			UserID:    "u1",
			Amount:    decimal.NewFromInt(int64(300 + i)),
			Timestamp: time.Now(),
		})
		require.NoError(t, err)
	}
	// Duplicate event ids are dropped by the stream.
	require.NoError(t, pub.Publish(ctx, domain.BidPlaced{EventID: "evt-1", ArtworkID: "A1", BidID: "bid-1", Amount: decimal.NewFromInt(301)}))

	consumeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var got []wire.BidEvent
	done := make(chan struct{})
	go func() {
		_ = auctionsnats.Consume(consumeCtx, js, "A1", func(e wire.BidEvent) { got = append(got, e) })
		close(done)
	}()
	<-done

	require.Len(t, got, 2)
	assert.Equal(t, "bid-1", got[0].BidID)
	assert.Equal(t, "302.00", got[1].Amount)
}
