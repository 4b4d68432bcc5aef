package api

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ordersdomain "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "PORT", "POSTGRES_DSN", "REDIS_ADDR", "NATS_URL", "BID_STREAM_MAX_AGE",
		"KAFKA_BROKERS", "KAFKA_ORDER_TOPIC", "TEMPORAL_ADDRESS", "TEMPORAL_NAMESPACE",
		"TEMPORAL_DISABLED", "REFUND_POLICY", "BID_INCREMENT",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ordersdomain.RefundPaidOnly, cfg.RefundPolicy)
	assert.Equal(t, "1", cfg.BidIncrement.String())
	assert.Equal(t, defaultOrderTopic, cfg.KafkaOrderTopic)
	assert.False(t, cfg.TemporalDisabled)
	assert.Zero(t, cfg.BidStreamMaxAge)
}

func TestLoadConfig_EnvironmentWinsOverFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "artstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9090"
redisAddr: redis:6379
refundPolicy: always
bidIncrement: "5"
bidStreamMaxAge: 48h
temporalDisabled: true
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")
	t.Setenv("TEMPORAL_DISABLED", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, ordersdomain.RefundAlways, cfg.RefundPolicy)
	assert.Equal(t, "5", cfg.BidIncrement.String())
	assert.Equal(t, 48*time.Hour, cfg.BidStreamMaxAge)
	assert.False(t, cfg.TemporalDisabled)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"refund policy":  {"REFUND_POLICY", "sometimes"},
		"zero increment": {"BID_INCREMENT", "0"},
		"bad increment":  {"BID_INCREMENT", "ten"},
		"bad max age":    {"BID_STREAM_MAX_AGE", "forever"},
		"missing file":   {"CONFIG_FILE", "/nonexistent/artstore.yaml"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
