package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BidPlacedEventName identifies accepted bids on the wire.
const BidPlacedEventName = "auctions.bid.placed"

// BidPlaced is raised after a bid has been stored.
type BidPlaced struct {
	EventID      string
	ArtworkID    string
	BidID        string
	UserID       string
	UserName     string
	UserAvatarID string
	Amount       decimal.Decimal
	PreviousBid  decimal.Decimal
	Timestamp    time.Time
}

// NewBidPlaced builds the event for bid. previous is the floor the bid exceeded.
func NewBidPlaced(eventID string, bid Bid, previous decimal.Decimal) BidPlaced {
	return BidPlaced{
		EventID:      eventID,
		ArtworkID:    bid.ArtworkID,
		BidID:        bid.ID,
		UserID:       bid.UserID,
		UserName:     bid.UserName,
		UserAvatarID: bid.UserAvatarID,
		Amount:       bid.Amount,
		PreviousBid:  previous,
		Timestamp:    bid.Timestamp,
	}
}
