package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-artstore-api/internal/app/api"
	platformobservability "github.com/Apurer/go-gin-artstore-api/internal/platform/observability"
	platformtemporal "github.com/Apurer/go-gin-artstore-api/internal/platform/temporal"
	orderactivities "github.com/Apurer/go-gin-artstore-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-artstore-api/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "artstore-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backends, closeBackends := api.ConnectBackends(ctx, cfg, serviceName, logger)
	defer closeBackends()
	if backends.DB == nil {
		logger.Warn("worker is cancelling orders in its own memory store; run with POSTGRES_DSN to share orders with the API")
	}
	orderService := api.NewOrdersService(cfg, backends, instruments, nil)
	activities := orderactivities.NewActivities(orderService)

	temporalClient, err := platformtemporal.Dial(platformtemporal.Config{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
	}, logger, instruments.Tracer("temporal-worker"))
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.OrderCancellationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OrderCancellationWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderCancellationWorkflowName})
	w.RegisterActivityWithOptions(activities.CancelOrder, activity.RegisterOptions{Name: orderactivities.CancelOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.OrderCancellationTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
