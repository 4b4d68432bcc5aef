package api

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	auctionsmemory "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/adapters/memory"
	auctionspostgres "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/adapters/persistence/postgres"
	auctionsports "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/ports"
	orderskafka "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/adapters/events/kafka"
	ordersmemory "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/adapters/memory"
	orderspostgres "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/adapters/persistence/postgres"
	ordersports "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/ports"
	platformkafka "github.com/Apurer/go-gin-artstore-api/internal/platform/kafka"
	"github.com/Apurer/go-gin-artstore-api/internal/platform/migrations"
	platformnats "github.com/Apurer/go-gin-artstore-api/internal/platform/nats"
	platformpostgres "github.com/Apurer/go-gin-artstore-api/internal/platform/postgres"
	platformredis "github.com/Apurer/go-gin-artstore-api/internal/platform/redis"
)

// Backends holds the optional infrastructure connections. Any field may be nil when the
// matching setting is empty or the service is unreachable.
type Backends struct {
	DB        *gorm.DB
	Redis     *redis.Client
	JetStream jetstream.JetStream
	Kafka     *platformkafka.Client

	logger   *slog.Logger
	cleanups []func()
}

// ConnectBackends dials every configured backend and applies schema migrations when
// postgres is reachable. The returned function closes whatever was opened.
func ConnectBackends(ctx context.Context, cfg Config, name string, logger *slog.Logger) (*Backends, func()) {
	b := &Backends{logger: logger, Kafka: platformkafka.NewClient(cfg.KafkaBrokers)}

	db, closeDB := platformpostgres.ConnectDSN(ctx, cfg.PostgresDSN, logger)
	b.cleanups = append(b.cleanups, closeDB)
	if db != nil {
		if err := migrations.Run(db); err != nil {
			logger.Warn("schema migration failed, falling back to in-memory stores", slog.String("error", err.Error()))
		} else {
			b.DB = db
		}
	}

	rdb, closeRedis := platformredis.ConnectAddr(ctx, cfg.RedisAddr, logger)
	b.cleanups = append(b.cleanups, closeRedis)
	b.Redis = rdb

	js, closeNats := platformnats.ConnectURL(cfg.NatsURL, name, logger)
	b.cleanups = append(b.cleanups, closeNats)
	b.JetStream = js

	return b, b.close
}

func (b *Backends) close() {
	for i := len(b.cleanups) - 1; i >= 0; i-- {
		b.cleanups[i]()
	}
}

func (b *Backends) OrderStore() ordersports.OrderStore {
	if b.DB == nil {
		return ordersmemory.NewStore()
	}
	b.logger.Info("order store configured with postgres")
	return orderspostgres.NewStore(b.DB)
}

func (b *Backends) ArtworkStore() auctionsports.ArtworkStore {
	if b.DB == nil {
		return auctionsmemory.NewStore()
	}
	b.logger.Info("artwork store configured with postgres")
	return auctionspostgres.NewStore(b.DB)
}

// OrderEvents returns a kafka publisher for topic, or nil when no brokers are configured.
func (b *Backends) OrderEvents(topic string) ordersports.EventPublisher {
	if !b.Kafka.Enabled() {
		b.logger.Info("KAFKA_BROKERS not set, order events are not published")
		return nil
	}
	writer := b.Kafka.NewWriter(topic)
	b.cleanups = append(b.cleanups, func() { _ = writer.Close() })
	b.logger.Info("order events publishing to kafka", slog.String("topic", topic))
	return orderskafka.NewPublisher(writer)
}
