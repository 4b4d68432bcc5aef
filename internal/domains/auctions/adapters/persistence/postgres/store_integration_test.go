//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	auctionspostgres "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/adapters/persistence/postgres"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/application"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/ports"
	"github.com/Apurer/go-gin-artstore-api/internal/platform/migrations"
	platformpostgres "github.com/Apurer/go-gin-artstore-api/internal/platform/postgres"
)

func setupPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("artstore_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := platformpostgres.Connect(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	return db, func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}
}

func TestArtworkStore_BidsRoundTripNewestFirst(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	store := auctionspostgres.NewStore(db)
	ctx := context.Background()
	now := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	start := decimal.NewFromInt(300)
	end := now.Add(time.Hour)
	artwork, err := domain.NewArtwork(domain.NewArtworkParams{
		ID: "A1", Title: "Nocturne", ArtistID: "artist-1", Price: decimal.NewFromInt(500),
		BiddingEnabled: true, StartPrice: &start, AuctionEndDate: &end, Now: now,
	})
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, artwork))
	assert.ErrorIs(t, store.Create(ctx, artwork), ports.ErrAlreadyExists)

	for i, amount := range []int64{350, 400} {
		_, err := store.Update(ctx, "A1", func(a *domain.Artwork) error {
			_, err := a.PlaceBid(domain.Bidder{UserID: "u1", Name: "Alice"}, decimal.NewFromInt(amount), now.Add(time.Duration(i+1)*time.Minute), domain.DefaultIncrement, fmt.Sprintf("bid-%d", i))
			return err
		})
		require.NoError(t, err)
	}

	loaded, err := store.Get(ctx, "A1")
	require.NoError(t, err)
	require.Len(t, loaded.Bids, 2)
	assert.Equal(t, "bid-1", loaded.Bids[0].ID)
	assert.True(t, loaded.CurrentBid.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, "bid-1", loaded.WinningBidID)
	assert.Equal(t, int64(3), loaded.Version)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Bids, 2)
}

func TestArtworkStore_ConcurrentBidsThroughService(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	svc := application.NewService(auctionspostgres.NewStore(db))
	ctx := context.Background()
	start := decimal.NewFromInt(100)
	end := time.Now().Add(time.Hour)
	_, err := svc.ListArtwork(ctx, ports.ListArtworkInput{ID: "A1", Title: "Nocturne", BiddingEnabled: true, StartPrice: &start, AuctionEndDate: &end})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = svc.PlaceBid(ctx, ports.PlaceBidInput{
				ArtworkID: "A1",
				Bidder:    domain.Bidder{UserID: fmt.Sprintf("u%d", i)},
				Amount:    decimal.NewFromInt(int64(101 + i%4)),
			})
		}(i)
	}
	wg.Wait()

	loaded, err := svc.GetArtwork(ctx, "A1")
	require.NoError(t, err)
	require.NotEmpty(t, loaded.Bids)
	assert.LessOrEqual(t, len(loaded.Bids), 4)
	for i := 0; i < len(loaded.Bids)-1; i++ {
		assert.True(t, loaded.Bids[i].Amount.GreaterThan(loaded.Bids[i+1].Amount))
	}
}
