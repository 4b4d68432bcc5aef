package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/adapters/wire"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/ports"
)

const (
	// StreamName is the JetStream stream holding accepted bids.
	StreamName    = "BID_EVENTS"
	subjectPrefix = "auctions.bids."
)

// Subject is the JetStream subject for bids on one artwork.
func Subject(artworkID string) string { return subjectPrefix + artworkID }

// EnsureStream creates or updates the bid stream.
func EnsureStream(ctx context.Context, js jetstream.JetStream, maxAge time.Duration) (jetstream.Stream, error) {
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Description: "Accepted auction bids",
		Subjects:    []string{subjectPrefix + "*"},
		Storage:     jetstream.FileStorage,
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      maxAge,
		Replicas:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("create/update stream %s: %w", StreamName, err)
	}
	return stream, nil
}

// Publisher appends accepted bids to the BID_EVENTS stream.
type Publisher struct {
	js jetstream.JetStream
}

var _ ports.BidEventPublisher = (*Publisher)(nil)

func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// Publish waits for the stream ack. The event id is the dedup key.
func (p *Publisher) Publish(ctx context.Context, event domain.BidPlaced) error {
	data, err := json.Marshal(wire.FromBidPlaced(event))
	if err != nil {
		return fmt.Errorf("marshal bid event: %w", err)
	}
	msg := nats.NewMsg(Subject(event.ArtworkID))
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, event.EventID)
	if _, err := p.js.PublishMsg(ctx, msg); err != nil {
		return fmt.Errorf("publish to JetStream: %w", err)
	}
	return nil
}

// Consume delivers the bid events of one artwork, or of all artworks when artworkID is empty,
// starting from the first stored message. It blocks until ctx is done.
func Consume(ctx context.Context, js jetstream.JetStream, artworkID string, handle func(wire.BidEvent)) error {
	filter := subjectPrefix + "*"
	if artworkID != "" {
		filter = Subject(artworkID)
	}
	consumer, err := js.OrderedConsumer(ctx, StreamName, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{filter},
		DeliverPolicy:  jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}
	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		var event wire.BidEvent
		if err := json.Unmarshal(msg.Data(), &event); err == nil {
			handle(event)
		}
	})
	if err != nil {
		return fmt.Errorf("consume %s: %w", filter, err)
	}
	defer cc.Stop()
	<-ctx.Done()
	return nil
}
