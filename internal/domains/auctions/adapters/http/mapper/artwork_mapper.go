package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/ports"
)

// ListArtworkRequest registers an artwork for sale or auction.
type ListArtworkRequest struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	ArtistID       string           `json:"artistId"`
	Description    string           `json:"description,omitempty"`
	Price          decimal.Decimal  `json:"price"`
	BiddingEnabled bool             `json:"biddingEnabled"`
	StartPrice     *decimal.Decimal `json:"startPrice,omitempty"`
	AuctionEndDate *time.Time       `json:"auctionEndDate,omitempty"`
}

// PlaceBidRequest carries the bidder identity and the offer.
type PlaceBidRequest struct {
	UserID       string          `json:"userId"`
	UserName     string          `json:"userName,omitempty"`
	UserAvatarID string          `json:"userAvatarId,omitempty"`
	Guest        bool            `json:"guest,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
}

type Bid struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	UserName     string    `json:"userName,omitempty"`
	UserAvatarID string    `json:"userAvatarId,omitempty"`
	Amount       string    `json:"amount"`
	Timestamp    time.Time `json:"timestamp"`
}

// Artwork is the HTTP representation of an artwork and its bid history, newest bid first.
type Artwork struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	ArtistID       string     `json:"artistId"`
	Description    string     `json:"description,omitempty"`
	Price          string     `json:"price"`
	BiddingEnabled bool       `json:"biddingEnabled"`
	StartPrice     *string    `json:"startPrice,omitempty"`
	CurrentBid     *string    `json:"currentBid,omitempty"`
	AuctionEndDate *time.Time `json:"auctionEndDate,omitempty"`
	WinningBidID   string     `json:"winningBidId,omitempty"`
	Bids           []Bid      `json:"bids"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Auction pairs an artwork with the derived bidding figures.
type Auction struct {
	Artwork        Artwork `json:"artwork"`
	HighestBid     string  `json:"highestBid"`
	MinimumNextBid string  `json:"minimumNextBid"`
	TimeRemaining  string  `json:"timeRemaining,omitempty"`
	Closed         bool    `json:"closed"`
	HighestBidder  *Bid    `json:"highestBidder,omitempty"`
}

func ToListArtworkInput(req ListArtworkRequest) ports.ListArtworkInput {
	return ports.ListArtworkInput{
		ID:             req.ID,
		Title:          req.Title,
		ArtistID:       req.ArtistID,
		Description:    req.Description,
		Price:          req.Price,
		BiddingEnabled: req.BiddingEnabled,
		StartPrice:     req.StartPrice,
		AuctionEndDate: req.AuctionEndDate,
	}
}

func ToPlaceBidInput(artworkID string, req PlaceBidRequest) ports.PlaceBidInput {
	return ports.PlaceBidInput{
		ArtworkID: artworkID,
		Bidder: domain.Bidder{
			UserID:   req.UserID,
			Name:     req.UserName,
			AvatarID: req.UserAvatarID,
			Guest:    req.Guest,
		},
		Amount: req.Amount,
	}
}

func FromArtwork(a *domain.Artwork) Artwork {
	if a == nil {
		return Artwork{}
	}
	bids := make([]Bid, len(a.Bids))
	for i, b := range a.Bids {
		bids[i] = fromBid(b)
	}
	return Artwork{
		ID:             a.ID,
		Title:          a.Title,
		ArtistID:       a.ArtistID,
		Description:    a.Description,
		Price:          a.Price.StringFixed(2),
		BiddingEnabled: a.BiddingEnabled,
		StartPrice:     fixed(a.StartPrice),
		CurrentBid:     fixed(a.CurrentBid),
		AuctionEndDate: a.AuctionEndDate,
		WinningBidID:   a.WinningBidID,
		Bids:           bids,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func FromArtworkList(artworks []*domain.Artwork) []Artwork {
	out := make([]Artwork, 0, len(artworks))
	for _, a := range artworks {
		out = append(out, FromArtwork(a))
	}
	return out
}

// FromSummary renders the derived figures of one auction snapshot.
func FromSummary(s *ports.Summary) Auction {
	out := Auction{
		Artwork:        FromArtwork(s.Artwork),
		HighestBid:     s.HighestBid.StringFixed(2),
		MinimumNextBid: s.MinimumNextBid.StringFixed(2),
		TimeRemaining:  s.TimeRemaining.Humanize(),
		Closed:         s.Closed,
	}
	if s.HighestBidder != nil {
		bidder := fromBid(*s.HighestBidder)
		out.HighestBidder = &bidder
	}
	return out
}

func fromBid(b domain.Bid) Bid {
	return Bid{
		ID:           b.ID,
		UserID:       b.UserID,
		UserName:     b.UserName,
		UserAvatarID: b.UserAvatarID,
		Amount:       b.Amount.StringFixed(2),
		Timestamp:    b.Timestamp,
	}
}

func fixed(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}
