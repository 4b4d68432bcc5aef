package api

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	ordersmemory "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/adapters/memory"
	ordersworkflows "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/application"
	"github.com/Apurer/go-gin-artstore-api/internal/platform/observability"
)

func TestNewOrderWorkflows_StaysInlineWithoutSharedStore(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	instruments := &observability.Instruments{Logger: logger}
	service := ordersapp.NewService(ordersmemory.NewStore())

	tests := []struct {
		name     string
		cfg      Config
		backends *Backends
	}{
		{name: "temporal disabled", cfg: Config{TemporalDisabled: true}, backends: &Backends{}},
		{name: "memory order store", cfg: Config{TemporalAddress: "127.0.0.1:1"}, backends: &Backends{}},
		{name: "no backends", cfg: Config{TemporalAddress: "127.0.0.1:1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workflows, closeFn := newOrderWorkflows(tt.cfg, tt.backends, service, logger, instruments)
			defer closeFn()
			assert.IsType(t, &ordersworkflows.InlineOrderWorkflows{}, workflows)
		})
	}
}
