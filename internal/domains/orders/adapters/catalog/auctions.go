package catalog

import (
	"context"
	"errors"

	auctionsdomain "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/domain"
	auctionsports "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/ports"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/ports"
)

// ArtworkSource is the read side of the auctions module used for checkout snapshots.
type ArtworkSource interface {
	GetArtwork(ctx context.Context, id string) (*auctionsdomain.Artwork, error)
}

// Auctions resolves order items against the artworks held by the auctions module.
// Auctioned artworks are sold at their current bid once one exists, otherwise at the listed price.
type Auctions struct {
	source ArtworkSource
}

var _ ports.ArtworkCatalog = (*Auctions)(nil)

func NewAuctions(source ArtworkSource) *Auctions {
	return &Auctions{source: source}
}

func (c *Auctions) Artwork(ctx context.Context, id string) (ports.CatalogArtwork, error) {
	artwork, err := c.source.GetArtwork(ctx, id)
	if err != nil {
		if errors.Is(err, auctionsports.ErrNotFound) {
			return ports.CatalogArtwork{}, ports.ErrArtworkNotFound
		}
		return ports.CatalogArtwork{}, err
	}
	price := artwork.Price
	if artwork.BiddingEnabled && artwork.CurrentBid != nil {
		price = *artwork.CurrentBid
	}
	return ports.CatalogArtwork{
		ID:       artwork.ID,
		Title:    artwork.Title,
		ArtistID: artwork.ArtistID,
		Price:    price,
	}, nil
}
