package live

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/adapters/wire"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/ports"
)

var ErrDropped = errors.New("live hub dropped bid event")

// Publisher feeds accepted bids straight into a local hub.
// Multi-instance deployments use the Redis publisher and subscriber instead.
type Publisher struct {
	hub *Hub
}

var _ ports.BidEventPublisher = (*Publisher)(nil)

func NewPublisher(hub *Hub) *Publisher {
	return &Publisher{hub: hub}
}

func (p *Publisher) Publish(_ context.Context, event domain.BidPlaced) error {
	payload, err := json.Marshal(wire.FromBidPlaced(event))
	if err != nil {
		return err
	}
	if !p.hub.Broadcast(event.ArtworkID, payload) {
		return ErrDropped
	}
	return nil
}
