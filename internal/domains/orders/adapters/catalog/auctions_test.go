package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auctionsdomain "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/domain"
	auctionsports "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/ports"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/ports"
)

type sourceFunc func(ctx context.Context, id string) (*auctionsdomain.Artwork, error)

func (f sourceFunc) GetArtwork(ctx context.Context, id string) (*auctionsdomain.Artwork, error) {
	return f(ctx, id)
}

func TestAuctions_Artwork(t *testing.T) {
	bid := decimal.NewFromInt(350)
	artworks := map[string]*auctionsdomain.Artwork{
		"fixed":   {ID: "fixed", Title: "Still", ArtistID: "a1", Price: decimal.NewFromInt(120)},
		"auction": {ID: "auction", Title: "Nocturne", ArtistID: "a2", Price: decimal.NewFromInt(500), BiddingEnabled: true, CurrentBid: &bid},
	}
	catalog := NewAuctions(sourceFunc(func(_ context.Context, id string) (*auctionsdomain.Artwork, error) {
		if a, ok := artworks[id]; ok {
			return a, nil
		}
		return nil, auctionsports.ErrNotFound
	}))

	fixed, err := catalog.Artwork(context.Background(), "fixed")
	require.NoError(t, err)
	assert.Equal(t, "Still", fixed.Title)
	assert.True(t, fixed.Price.Equal(decimal.NewFromInt(120)))

	auction, err := catalog.Artwork(context.Background(), "auction")
	require.NoError(t, err)
	assert.True(t, auction.Price.Equal(bid))

	_, err = catalog.Artwork(context.Background(), "missing")
	assert.ErrorIs(t, err, ports.ErrArtworkNotFound)
}
