package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrAuthRequired     = errors.New("you must be logged in to place a bid")
	ErrBiddingDisabled  = errors.New("bidding is not enabled for this artwork")
	ErrAuctionClosed    = errors.New("auction has ended")
	ErrBidTooLow        = errors.New("bid is too low")
	ErrMissingArtworkID = errors.New("artwork id is required")
	ErrMissingTitle     = errors.New("artwork title is required")
	ErrNegativePrice    = errors.New("prices must not be negative")
	ErrAuctionTerms     = errors.New("an auction needs a start price or an end date")
	ErrInvalidIncrement = errors.New("bid increment must be greater than zero")
	ErrInvalidAmount    = errors.New("amounts must be in whole cents")
)

// DefaultIncrement is the smallest step above the highest bid suggested to bidders.
var DefaultIncrement = decimal.NewFromInt(1)

// BidTooLowError reports the floor a bid had to exceed and the suggested next bid.
type BidTooLowError struct {
	Floor   decimal.Decimal
	Minimum decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid must exceed %s", e.Floor.StringFixed(2))
}

func (e *BidTooLowError) Is(target error) bool {
	return target == ErrBidTooLow
}

// Bidder is the identity placing a bid with a display snapshot.
type Bidder struct {
	UserID   string
	Name     string
	AvatarID string
	Guest    bool
}

// Anonymous reports whether the bidder is a guest.
func (b Bidder) Anonymous() bool {
	return b.Guest || strings.TrimSpace(b.UserID) == ""
}

// Bid is an accepted offer. Bids are never edited or removed.
type Bid struct {
	ID           string
	ArtworkID    string
	UserID       string
	UserName     string
	UserAvatarID string
	Amount       decimal.Decimal
	Timestamp    time.Time
}

// Artwork is the auction-relevant view of a catalog artwork.
type Artwork struct {
	ID             string
	Title          string
	ArtistID       string
	Description    string
	Price          decimal.Decimal
	BiddingEnabled bool
	StartPrice     *decimal.Decimal
	CurrentBid     *decimal.Decimal
	AuctionEndDate *time.Time
	// Bids is ordered newest first.
	Bids         []Bid
	WinningBidID string
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewArtworkParams carries the listing data for an artwork.
type NewArtworkParams struct {
	ID             string
	Title          string
	ArtistID       string
	Description    string
	Price          decimal.Decimal
	BiddingEnabled bool
	StartPrice     *decimal.Decimal
	AuctionEndDate *time.Time
	Now            time.Time
}

// NewArtwork validates a listing. Auctions need a start price or an end date.
func NewArtwork(p NewArtworkParams) (*Artwork, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, ErrMissingArtworkID
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, ErrMissingTitle
	}
	if p.Price.IsNegative() || (p.StartPrice != nil && p.StartPrice.IsNegative()) {
		return nil, ErrNegativePrice
	}
	if !WholeCents(p.Price) || (p.StartPrice != nil && !WholeCents(*p.StartPrice)) {
		return nil, ErrInvalidAmount
	}
	if p.BiddingEnabled && p.StartPrice == nil && p.AuctionEndDate == nil {
		return nil, ErrAuctionTerms
	}
	now := p.Now.UTC()
	a := &Artwork{
		ID:             strings.TrimSpace(p.ID),
		Title:          strings.TrimSpace(p.Title),
		ArtistID:       p.ArtistID,
		Description:    p.Description,
		Price:          p.Price,
		BiddingEnabled: p.BiddingEnabled,
		StartPrice:     clonePtr(p.StartPrice),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if p.AuctionEndDate != nil {
		end := p.AuctionEndDate.UTC()
		a.AuctionEndDate = &end
	}
	return a, nil
}

// WholeCents reports whether d has no precision below a cent, matching the stored numeric(14,2).
func WholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// HighestBid is the floor a new bid must exceed: the current bid, else the start price, else zero.
func (a *Artwork) HighestBid() decimal.Decimal {
	switch {
	case a.CurrentBid != nil:
		return *a.CurrentBid
	case a.StartPrice != nil:
		return *a.StartPrice
	default:
		return decimal.Zero
	}
}

// MinimumNextBid is the highest bid plus increment. A non-positive increment falls back to DefaultIncrement.
func (a *Artwork) MinimumNextBid(increment decimal.Decimal) decimal.Decimal {
	if !increment.IsPositive() {
		increment = DefaultIncrement
	}
	return a.HighestBid().Add(increment)
}

// Closed reports whether bidding has ended at now. Artworks without an end date never close.
func (a *Artwork) Closed(now time.Time) bool {
	return a.AuctionEndDate != nil && !now.Before(*a.AuctionEndDate)
}

// HighestBidder returns the winning bid tracked by id.
func (a *Artwork) HighestBidder() (Bid, bool) {
	if a.WinningBidID == "" {
		return Bid{}, false
	}
	for _, bid := range a.Bids {
		if bid.ID == a.WinningBidID {
			return bid, true
		}
	}
	return Bid{}, false
}

// PlaceBid validates and records a bid.
// Checks run in a fixed order: identity, bidding enabled, amount, auction window.
func (a *Artwork) PlaceBid(bidder Bidder, amount decimal.Decimal, now time.Time, increment decimal.Decimal, bidID string) (Bid, error) {
	if bidder.Anonymous() {
		return Bid{}, ErrAuthRequired
	}
	if !a.BiddingEnabled {
		return Bid{}, ErrBiddingDisabled
	}
	if !WholeCents(amount) {
		return Bid{}, ErrInvalidAmount
	}
	floor := a.HighestBid()
	if amount.LessThanOrEqual(floor) {
		return Bid{}, &BidTooLowError{Floor: floor, Minimum: a.MinimumNextBid(increment)}
	}
	if a.Closed(now) {
		return Bid{}, ErrAuctionClosed
	}
	bid := Bid{
		ID:           bidID,
		ArtworkID:    a.ID,
		UserID:       bidder.UserID,
		UserName:     bidder.Name,
		UserAvatarID: bidder.AvatarID,
		Amount:       amount,
		Timestamp:    now.UTC(),
	}
	a.Bids = append([]Bid{bid}, a.Bids...)
	current := amount
	a.CurrentBid = &current
	a.WinningBidID = bid.ID
	a.UpdatedAt = bid.Timestamp
	return bid, nil
}

// Clone returns a deep copy safe to mutate.
func (a *Artwork) Clone() *Artwork {
	if a == nil {
		return nil
	}
	c := *a
	c.StartPrice = clonePtr(a.StartPrice)
	c.CurrentBid = clonePtr(a.CurrentBid)
	c.AuctionEndDate = clonePtr(a.AuctionEndDate)
	c.Bids = append([]Bid(nil), a.Bids...)
	return &c
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
