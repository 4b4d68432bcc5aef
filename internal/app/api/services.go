package api

import (
	"context"
	"log/slog"

	auctionsnats "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/adapters/events/nats"
	auctionsobs "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/adapters/observability"
	auctionsredis "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/adapters/redis"
	auctionsapp "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/application"
	auctionsdomain "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/domain"
	auctionsports "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/ports"
	ordersobs "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/adapters/observability"
	ordersapp "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/application"
	ordersdomain "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-artstore-api/internal/platform/observability"
)

// NewOrdersService builds the decorated orders service. catalog may be nil for processes that
// never place orders, such as the cancellation worker.
func NewOrdersService(cfg Config, b *Backends, instruments *observability.Instruments, catalog ordersports.ArtworkCatalog) ordersports.Service {
	logger := instruments.Logger
	core := ordersapp.NewService(
		b.OrderStore(),
		ordersapp.WithCatalog(catalog),
		ordersapp.WithEventPublisher(b.OrderEvents(cfg.KafkaOrderTopic)),
		ordersapp.WithRefundPolicy(cfg.RefundPolicy),
		ordersapp.WithPublishErrorHandler(func(ctx context.Context, event ordersdomain.Event, err error) {
			logger.LogAttrs(ctx, slog.LevelWarn, "order event not published",
				slog.String("event", event.EventName()),
				slog.String("order.id", event.AggregateID()),
				slog.String("error", err.Error()),
			)
		}),
	)
	return ordersobs.New(
		core,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
}

// NewAuctionsService builds the decorated auctions service. With redis configured the ledger
// guards concurrent bids across replicas and accepted bids go out over redis pub/sub; otherwise
// local is used as the fan-out. Bids are archived to JetStream when NATS is configured.
func NewAuctionsService(ctx context.Context, cfg Config, b *Backends, instruments *observability.Instruments, local auctionsports.BidEventPublisher) auctionsports.Service {
	logger := instruments.Logger
	opts := []auctionsapp.Option{
		auctionsapp.WithIncrement(cfg.BidIncrement),
		auctionsapp.WithPublishErrorHandler(func(ctx context.Context, event auctionsdomain.BidPlaced, err error) {
			logger.LogAttrs(ctx, slog.LevelWarn, "bid event not published",
				slog.String("artwork.id", event.ArtworkID),
				slog.String("bid.id", event.BidID),
				slog.String("error", err.Error()),
			)
		}),
		auctionsapp.WithReleaseErrorHandler(func(ctx context.Context, artworkID string, err error) {
			logger.LogAttrs(ctx, slog.LevelError, "bid ledger reservation not released",
				slog.String("artwork.id", artworkID),
				slog.String("error", err.Error()),
			)
		}),
	}
	if b.Redis != nil {
		opts = append(opts,
			auctionsapp.WithBidLedger(auctionsredis.NewLedger(b.Redis)),
			auctionsapp.WithEventPublishers(auctionsredis.NewPublisher(b.Redis)),
		)
	} else if local != nil {
		opts = append(opts, auctionsapp.WithEventPublishers(local))
	}
	if b.JetStream != nil {
		if _, err := auctionsnats.EnsureStream(ctx, b.JetStream, cfg.BidStreamMaxAge); err != nil {
			logger.Warn("bid event stream unavailable", slog.String("error", err.Error()))
		} else {
			opts = append(opts, auctionsapp.WithEventPublishers(auctionsnats.NewPublisher(b.JetStream)))
		}
	}
	return auctionsobs.New(
		auctionsapp.NewService(b.ArtworkStore(), opts...),
		auctionsobs.WithLogger(logger),
		auctionsobs.WithTracer(instruments.Tracer("internal.auctions.application")),
		auctionsobs.WithMeter(instruments.Meter("internal.auctions.application")),
	)
}
