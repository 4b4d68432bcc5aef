package ports

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/domain"
)

var (
	ErrNotFound         = errors.New("artwork not found")
	ErrAlreadyExists    = errors.New("artwork already exists")
	ErrConcurrentUpdate = errors.New("artwork was modified concurrently")
)

// MutateFunc changes an artwork inside a store update. Returning an error discards the change.
type MutateFunc func(*domain.Artwork) error

// ArtworkStore persists artworks with per-artwork serialized updates.
type ArtworkStore interface {
	Create(ctx context.Context, artwork *domain.Artwork) error
	Get(ctx context.Context, id string) (*domain.Artwork, error)
	List(ctx context.Context) ([]*domain.Artwork, error)
	Update(ctx context.Context, id string, mutate MutateFunc) (*domain.Artwork, error)
}

// BidLedger is a shared compare-and-set of the highest bid per artwork.
// Reserve accepts amount only when it exceeds both floor and the ledger's current value,
// and returns the value it compared against.
// Release undoes a reservation whose bid was never stored, restoring the previous value and winner
// only while bidID still holds the ledger.
type BidLedger interface {
	Reserve(ctx context.Context, artworkID, bidID string, amount, floor decimal.Decimal) (bool, decimal.Decimal, error)
	Release(ctx context.Context, artworkID, bidID string, previous decimal.Decimal, previousWinner string) (bool, error)
}

// BidEventPublisher ships accepted bids to downstream consumers.
type BidEventPublisher interface {
	Publish(ctx context.Context, event domain.BidPlaced) error
}

// ListArtworkInput registers an artwork for sale or auction.
type ListArtworkInput struct {
	ID             string
	Title          string
	ArtistID       string
	Description    string
	Price          decimal.Decimal
	BiddingEnabled bool
	StartPrice     *decimal.Decimal
	AuctionEndDate *time.Time
}

// PlaceBidInput identifies the artwork, the bidder and the offer.
type PlaceBidInput struct {
	ArtworkID string
	Bidder    domain.Bidder
	Amount    decimal.Decimal
}

// Summary is a consistent snapshot of the derived auction queries.
type Summary struct {
	Artwork        *domain.Artwork
	HighestBid     decimal.Decimal
	MinimumNextBid decimal.Decimal
	TimeRemaining  domain.TimeRemaining
	HighestBidder  *domain.Bid
	Closed         bool
}

// Service exposes the auction use cases to adapters.
type Service interface {
	ListArtwork(ctx context.Context, input ListArtworkInput) (*domain.Artwork, error)
	GetArtwork(ctx context.Context, id string) (*domain.Artwork, error)
	ListAuctions(ctx context.Context) ([]*domain.Artwork, error)
	PlaceBid(ctx context.Context, input PlaceBidInput) (*domain.Artwork, error)
	Summary(ctx context.Context, id string) (*Summary, error)
}
