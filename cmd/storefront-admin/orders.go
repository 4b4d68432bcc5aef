package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/Apurer/go-gin-artstore-api/internal/app/api"
	orderskafka "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/adapters/events/kafka"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/adapters/http/mapper"
	ordersworkflows "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/adapters/workflows"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/ports"
	platformkafka "github.com/Apurer/go-gin-artstore-api/internal/platform/kafka"
	platformtemporal "github.com/Apurer/go-gin-artstore-api/internal/platform/temporal"
)

func ordersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect and move orders through their lifecycle",
	}
	cmd.AddCommand(orderStatusCmd(a), orderSetStatusCmd(a), orderEventsCmd(a))
	return cmd
}

func (a *app) orderService(cmd *cobra.Command) (ports.Service, error) {
	backends := a.connect(cmd.Context())
	if backends.DB == nil {
		return nil, errNoDatabase
	}
	return api.NewOrdersService(a.cfg, backends, a.instruments(), nil), nil
}

func orderStatusCmd(a *app) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "status ORDER_ID",
		Short: "Print an order with its tracking progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := a.orderService(cmd)
			if err != nil {
				return err
			}
			order, err := service.GetOrder(cmd.Context(), args[0], userID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), mapper.FromOrderStatus(order))
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Owner of the order")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

type setStatusFlags struct {
	userID         string
	trackingNumber string
	reason         string
	comments       string
	viaTemporal    bool
}

func orderSetStatusCmd(a *app) *cobra.Command {
	var flags setStatusFlags
	cmd := &cobra.Command{
		Use:   "set-status ORDER_ID STATUS",
		Short: "Move an order to a new status",
		Long: `Move an order to a new status. Cancelling requires --reason, one of
changed_mind, found_better_price, delayed_delivery, wrong_item, duplicate_order, other.
With --temporal the cancellation runs through the cancellation workflow.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := flags.input(args[0], args[1])
			if err != nil {
				return err
			}
			service, err := a.orderService(cmd)
			if err != nil {
				return err
			}
			var order *domain.Order
			if input.Status == domain.StatusCancelled && flags.viaTemporal {
				order, err = a.cancelViaTemporal(cmd, input)
			} else {
				order, err = service.SetStatus(cmd.Context(), input)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), mapper.FromOrderStatus(order))
		},
	}
	cmd.Flags().StringVar(&flags.userID, "user", "", "Owner of the order")
	cmd.Flags().StringVar(&flags.trackingNumber, "tracking-number", "", "Tracking number recorded when shipping")
	cmd.Flags().StringVar(&flags.reason, "reason", "", "Cancellation reason")
	cmd.Flags().StringVar(&flags.comments, "comments", "", "Cancellation comments")
	cmd.Flags().BoolVar(&flags.viaTemporal, "temporal", false, "Run cancellations through the Temporal workflow")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func (f setStatusFlags) input(orderID, rawStatus string) (ports.SetStatusInput, error) {
	status := domain.Status(strings.ToLower(strings.TrimSpace(rawStatus)))
	if !status.Valid() {
		return ports.SetStatusInput{}, fmt.Errorf("unknown status %q", rawStatus)
	}
	input := ports.SetStatusInput{OrderID: orderID, UserID: f.userID, Status: status}
	if f.trackingNumber != "" {
		tracking := f.trackingNumber
		input.Change.TrackingNumber = &tracking
	}
	if status == domain.StatusCancelled {
		if f.reason == "" {
			return ports.SetStatusInput{}, errors.New("--reason is required when cancelling")
		}
		reason := domain.CancellationReason(f.reason)
		input.Change.CancellationReason = &reason
		if f.comments != "" {
			comments := f.comments
			input.Change.CancellationComments = &comments
		}
	}
	return input, nil
}

func (a *app) cancelViaTemporal(cmd *cobra.Command, input ports.SetStatusInput) (*domain.Order, error) {
	c, err := platformtemporal.Dial(platformtemporal.Config{
		HostPort:  a.cfg.TemporalAddress,
		Namespace: a.cfg.TemporalNamespace,
	}, a.logger, a.instruments().Tracer(appName))
	if err != nil {
		return nil, fmt.Errorf("dial temporal: %w", err)
	}
	defer c.Close()
	return ordersworkflows.NewTemporalOrderWorkflows(c).CancelOrder(cmd.Context(), input)
}

func orderEventsCmd(a *app) *cobra.Command {
	var groupID string
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Tail order events from Kafka",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := platformkafka.NewClient(a.cfg.KafkaBrokers)
			if !client.Enabled() {
				return errors.New("KAFKA_BROKERS is required for this command")
			}
			otel.SetTextMapPropagator(propagation.TraceContext{})
			reader := client.NewReader(a.cfg.KafkaOrderTopic, groupID)
			defer reader.Close()
			for {
				msg, err := reader.ReadMessage(cmd.Context())
				if err != nil {
					if cmd.Context().Err() != nil {
						return nil
					}
					return fmt.Errorf("read %s: %w", a.cfg.KafkaOrderTopic, err)
				}
				msgCtx := platformkafka.ExtractHeaders(cmd.Context(), msg.Headers)
				a.logger.DebugContext(msgCtx, "order event received",
					slog.Int64("offset", msg.Offset),
					slog.String("traceId", trace.SpanContextFromContext(msgCtx).TraceID().String()),
				)
				var envelope orderskafka.Envelope
				if err := json.Unmarshal(msg.Value, &envelope); err != nil {
					a.logger.Warn("skipping undecodable order event", slog.Int64("offset", msg.Offset), slog.String("error", err.Error()))
					continue
				}
				if err := printJSON(cmd.OutOrStdout(), envelope); err != nil {
					return err
				}
			}
		},
	}
	cmd.Flags().StringVar(&groupID, "group", appName, "Kafka consumer group")
	return cmd
}
