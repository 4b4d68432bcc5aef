package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	storefrontserver "github.com/Apurer/go-gin-artstore-api/go"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/adapters/live"
	auctionsredis "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/adapters/redis"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/adapters/catalog"
	ordersworkflows "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/adapters/workflows"
	ordersports "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-artstore-api/internal/platform/observability"
	platformtemporal "github.com/Apurer/go-gin-artstore-api/internal/platform/temporal"
)

const serviceName = "artstore-api"

// Run boots the storefront HTTP API and blocks until ctx is cancelled or the server fails.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	instruments, shutdown, err := observability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backends, closeBackends := ConnectBackends(ctx, cfg, serviceName, logger)
	defer closeBackends()

	hub := live.NewHub(live.WithLogger(logger))
	go hub.Run(ctx)
	if backends.Redis != nil {
		subscriber := auctionsredis.NewSubscriber(backends.Redis, logger)
		go func() {
			err := subscriber.Listen(ctx, func(artworkID string, payload []byte) {
				hub.Broadcast(artworkID, payload)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("bid event subscription stopped", slog.String("error", err.Error()))
			}
		}()
	}

	auctionService := NewAuctionsService(ctx, cfg, backends, instruments, live.NewPublisher(hub))
	orderService := NewOrdersService(cfg, backends, instruments, catalog.NewAuctions(auctionService))

	orderWorkflows, closeWorkflows := newOrderWorkflows(cfg, backends, orderService, logger, instruments)
	defer closeWorkflows()

	handlers := storefrontserver.ApiHandleFunctions{
		OrderAPI:   storefrontserver.NewOrderAPI(orderService, orderWorkflows),
		AuctionAPI: storefrontserver.NewAuctionAPI(auctionService, hub),
	}
	httpMetrics := observability.NewHTTPMetrics(instruments.Registry, "api")
	router := storefrontserver.NewRouter(handlers, otelgin.Middleware(serviceName), httpMetrics.Middleware())
	router.GET("/metrics", gin.WrapH(observability.MetricsHandler(instruments.Registry)))

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront API listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("storefront API server exited", slog.String("addr", srv.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down storefront API")
		return srv.Shutdown(shutdownCtx)
	}
}

// newOrderWorkflows runs cancellations through Temporal when the worker can reach the same order store.
// Without a database the worker would cancel against its own empty memory store, so the API stays inline.
func newOrderWorkflows(cfg Config, backends *Backends, service ordersports.Service, logger *slog.Logger, instruments *observability.Instruments) (ordersports.WorkflowOrchestrator, func()) {
	inline := ordersworkflows.NewInlineOrderWorkflows(service)
	switch {
	case cfg.TemporalDisabled:
		logger.Info("Temporal disabled, cancelling orders inline")
		return inline, func() {}
	case backends == nil || backends.DB == nil:
		logger.Warn("no shared order store configured, cancelling orders inline")
		return inline, func() {}
	}
	temporalClient, err := platformtemporal.Dial(platformtemporal.Config{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
	}, logger, instruments.Tracer("temporal-client"))
	if err != nil {
		logger.Warn("Temporal workflows unavailable, cancelling orders inline", slog.String("error", err.Error()))
		return inline, func() {}
	}
	logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	return ordersworkflows.NewTemporalOrderWorkflows(temporalClient), temporalClient.Close
}
