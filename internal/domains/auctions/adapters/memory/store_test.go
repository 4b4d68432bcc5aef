package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/ports"
)

func TestStore_UpdateIsolatesCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	start := decimal.NewFromInt(10)
	a, err := domain.NewArtwork(domain.NewArtworkParams{ID: "A1", Title: "t", BiddingEnabled: true, StartPrice: &start, Now: time.Now()})
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, a))
	require.ErrorIs(t, s.Create(ctx, a), ports.ErrAlreadyExists)

	_, err = s.Update(ctx, "A1", func(a *domain.Artwork) error {
		_, err := a.PlaceBid(domain.Bidder{UserID: "u"}, decimal.NewFromInt(20), time.Now(), domain.DefaultIncrement, "b1")
		require.NoError(t, err)
		return errors.New("abort")
	})
	require.Error(t, err)

	loaded, err := s.Get(ctx, "A1")
	require.NoError(t, err)
	assert.Empty(t, loaded.Bids)
	assert.Equal(t, int64(1), loaded.Version)

	updated, err := s.Update(ctx, "A1", func(a *domain.Artwork) error {
		_, err := a.PlaceBid(domain.Bidder{UserID: "u"}, decimal.NewFromInt(20), time.Now(), domain.DefaultIncrement, "b2")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	updated.Bids[0].UserID = "tampered"

	loaded, err = s.Get(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, "u", loaded.Bids[0].UserID)

	_, err = s.Update(ctx, "missing", func(*domain.Artwork) error { return nil })
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
