// Package wire holds the JSON form of auction events shared by the messaging adapters.
package wire

import (
	"time"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/domain"
)

// BidEvent is the message body for an accepted bid.
type BidEvent struct {
	Type         string    `json:"type"`
	EventID      string    `json:"eventId"`
	ArtworkID    string    `json:"artworkId"`
	BidID        string    `json:"bidId"`
	UserID       string    `json:"userId"`
	UserName     string    `json:"userName,omitempty"`
	UserAvatarID string    `json:"userAvatarId,omitempty"`
	Amount       string    `json:"amount"`
	PreviousBid  string    `json:"previousBid"`
	Timestamp    time.Time `json:"timestamp"`
}

func FromBidPlaced(e domain.BidPlaced) BidEvent {
	return BidEvent{
		Type:         domain.BidPlacedEventName,
		EventID:      e.EventID,
		ArtworkID:    e.ArtworkID,
		BidID:        e.BidID,
		UserID:       e.UserID,
		UserName:     e.UserName,
		UserAvatarID: e.UserAvatarID,
		Amount:       e.Amount.StringFixed(2),
		PreviousBid:  e.PreviousBid.StringFixed(2),
		Timestamp:    e.Timestamp.UTC(),
	}
}
