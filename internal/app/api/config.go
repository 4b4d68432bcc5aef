package api

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.temporal.io/sdk/client"
	"gopkg.in/yaml.v3"

	auctionsdomain "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/domain"
	ordersdomain "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
)

const defaultOrderTopic = "orders.events"

// Config carries the settings shared by the API, worker and admin processes.
type Config struct {
	Port              string
	PostgresDSN       string
	RedisAddr         string
	NatsURL           string
	BidStreamMaxAge   time.Duration
	KafkaBrokers      string
	KafkaOrderTopic   string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	RefundPolicy      ordersdomain.RefundPolicy
	BidIncrement      decimal.Decimal
}

// fileConfig is the YAML overlay named by CONFIG_FILE. Environment variables win over it.
type fileConfig struct {
	Port              string `yaml:"port"`
	PostgresDSN       string `yaml:"postgresDsn"`
	RedisAddr         string `yaml:"redisAddr"`
	NatsURL           string `yaml:"natsUrl"`
	BidStreamMaxAge   string `yaml:"bidStreamMaxAge"`
	KafkaBrokers      string `yaml:"kafkaBrokers"`
	KafkaOrderTopic   string `yaml:"kafkaOrderTopic"`
	TemporalAddress   string `yaml:"temporalAddress"`
	TemporalNamespace string `yaml:"temporalNamespace"`
	TemporalDisabled  bool   `yaml:"temporalDisabled"`
	RefundPolicy      string `yaml:"refundPolicy"`
	BidIncrement      string `yaml:"bidIncrement"`
}

// LoadConfig applies defaults, then the optional CONFIG_FILE overlay, then environment variables,
// and validates the result.
func LoadConfig() (Config, error) {
	file, err := readFileConfig(strings.TrimSpace(os.Getenv("CONFIG_FILE")))
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Port:              envDefault("PORT", orDefault(file.Port, "8080")),
		PostgresDSN:       envDefault("POSTGRES_DSN", file.PostgresDSN),
		RedisAddr:         envDefault("REDIS_ADDR", file.RedisAddr),
		NatsURL:           envDefault("NATS_URL", file.NatsURL),
		KafkaBrokers:      envDefault("KAFKA_BROKERS", file.KafkaBrokers),
		KafkaOrderTopic:   envDefault("KAFKA_ORDER_TOPIC", orDefault(file.KafkaOrderTopic, defaultOrderTopic)),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", orDefault(file.TemporalAddress, client.DefaultHostPort)),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", orDefault(file.TemporalNamespace, client.DefaultNamespace)),
		TemporalDisabled:  file.TemporalDisabled,
	}
	if raw, ok := os.LookupEnv("TEMPORAL_DISABLED"); ok {
		cfg.TemporalDisabled = isTruthy(raw)
	}

	policy, err := ordersdomain.ParseRefundPolicy(envDefault("REFUND_POLICY", file.RefundPolicy))
	if err != nil {
		return Config{}, fmt.Errorf("REFUND_POLICY: %w", err)
	}
	cfg.RefundPolicy = policy

	cfg.BidIncrement = auctionsdomain.DefaultIncrement
	if raw := envDefault("BID_INCREMENT", file.BidIncrement); raw != "" {
		increment, err := decimal.NewFromString(raw)
		if err != nil || !increment.IsPositive() {
			return Config{}, fmt.Errorf("BID_INCREMENT must be a positive decimal")
		}
		cfg.BidIncrement = increment
	}

	if raw := envDefault("BID_STREAM_MAX_AGE", file.BidStreamMaxAge); raw != "" {
		maxAge, err := time.ParseDuration(raw)
		if err != nil || maxAge <= 0 {
			return Config{}, fmt.Errorf("BID_STREAM_MAX_AGE must be a positive duration")
		}
		cfg.BidStreamMaxAge = maxAge
	}
	return cfg, nil
}

func readFileConfig(path string) (fileConfig, error) {
	var file fileConfig
	if path == "" {
		return file, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return file, fmt.Errorf("read CONFIG_FILE: %w", err)
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return file, fmt.Errorf("parse CONFIG_FILE %s: %w", path, err)
	}
	return file, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
