package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/adapters/wire"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/ports"
)

const channelPrefix = "bid_events:"

// Channel is the pub/sub channel carrying accepted bids for one artwork.
func Channel(artworkID string) string { return channelPrefix + artworkID }

// Publisher mirrors accepted bids to Redis pub/sub so every API instance can feed its live clients.
type Publisher struct {
	client redis.UniversalClient
}

var _ ports.BidEventPublisher = (*Publisher)(nil)

func NewPublisher(client redis.UniversalClient) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, event domain.BidPlaced) error {
	payload, err := json.Marshal(wire.FromBidPlaced(event))
	if err != nil {
		return fmt.Errorf("marshal bid event: %w", err)
	}
	return p.client.Publish(ctx, Channel(event.ArtworkID), payload).Err()
}

// Subscriber relays every bid_events:* message to a handler.
type Subscriber struct {
	client redis.UniversalClient
	logger *slog.Logger
}

func NewSubscriber(client redis.UniversalClient, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{client: client, logger: logger}
}

// Listen blocks until ctx is done, calling handle with the artwork id and raw payload.
func (s *Subscriber) Listen(ctx context.Context, handle func(artworkID string, payload []byte)) error {
	pubsub := s.client.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			artworkID := strings.TrimPrefix(msg.Channel, channelPrefix)
			if artworkID == "" || artworkID == msg.Channel {
				s.logger.Warn("ignoring message on unexpected channel", slog.String("channel", msg.Channel))
				continue
			}
			handle(artworkID, []byte(msg.Payload))
		}
	}
}
