package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/adapters/observability/service"

// Service decorates the orders port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.PlaceOrder",
		attribute.String("user.id", input.UserID),
		attribute.Int("order.items.requested", len(input.Items)),
	)
	defer span.End()

	s.logInfo(ctx, "placing order", slog.String("user.id", input.UserID), slog.Int("items", len(input.Items)))
	order, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.String("user.id", input.UserID))
	}
	span.SetAttributes(attribute.String("order.id", order.ID))
	s.metrics.recordPlaced(ctx, order)
	s.logInfo(ctx, "order placed",
		slog.String("order.id", order.ID),
		slog.String("order.total", order.Totals.Total.StringFixed(2)),
		slog.String("payment.status", string(order.PaymentStatus)),
	)
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.GetOrder", attribute.String("order.id", orderID))
	defer span.End()

	order, err := s.inner.GetOrder(ctx, orderID, userID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", orderID))
	}
	span.SetAttributes(attribute.String("order.status", string(order.Status)))
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.ListOrders", attribute.String("user.id", userID))
	defer span.End()

	orders, err := s.inner.ListOrders(ctx, userID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders", slog.String("user.id", userID))
	}
	span.SetAttributes(attribute.Int("order.result.count", len(orders)))
	s.logInfo(ctx, "listed orders", slog.String("user.id", userID), slog.Int("count", len(orders)))
	return orders, nil
}

// SetStatus records a status_changes counter tagged with the target status.
func (s *Service) SetStatus(ctx context.Context, input ports.SetStatusInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.SetStatus",
		attribute.String("order.id", input.OrderID),
		attribute.String("order.status.requested", string(input.Status)),
	)
	defer span.End()

	s.logInfo(ctx, "changing order status", slog.String("order.id", input.OrderID), slog.String("status", string(input.Status)))
	order, err := s.inner.SetStatus(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, input.Status)
		return nil, s.handleError(ctx, span, err, "failed to change order status",
			slog.String("order.id", input.OrderID),
			slog.String("status", string(input.Status)),
		)
	}
	s.metrics.recordStatusChange(ctx, order.Status)
	s.logInfo(ctx, "order status changed",
		slog.String("order.id", order.ID),
		slog.String("status", string(order.Status)),
		slog.String("payment.status", string(order.PaymentStatus)),
	)
	return order, nil
}

func (s *Service) UpdateOrderDetails(ctx context.Context, input ports.UpdateDetailsInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdateOrderDetails", attribute.String("order.id", input.OrderID))
	defer span.End()

	order, err := s.inner.UpdateOrderDetails(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order details", slog.String("order.id", input.OrderID))
	}
	s.logInfo(ctx, "order details updated", slog.String("order.id", order.ID), slog.String("payment.status", string(order.PaymentStatus)))
	return order, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	ordersPlaced    metric.Int64Counter
	statusChanges   metric.Int64Counter
	statusRejected  metric.Int64Counter
	orderValueTotal metric.Float64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	placed, _ := m.Int64Counter("orders.service.placed", metric.WithDescription("Number of orders placed"))
	changes, _ := m.Int64Counter("orders.service.status_changes", metric.WithDescription("Number of applied status transitions"))
	rejected, _ := m.Int64Counter("orders.service.status_rejected", metric.WithDescription("Number of rejected status transitions"))
	value, _ := m.Float64Counter("orders.service.value", metric.WithDescription("Sum of placed order totals"))
	return serviceMetrics{
		ordersPlaced:    placed,
		statusChanges:   changes,
		statusRejected:  rejected,
		orderValueTotal: value,
	}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, order *domain.Order) {
	currency := attribute.String("order.currency", order.Totals.Currency)
	if m.ordersPlaced != nil {
		m.ordersPlaced.Add(ctx, 1, metric.WithAttributes(currency))
	}
	if m.orderValueTotal != nil {
		m.orderValueTotal.Add(ctx, order.Totals.Total.InexactFloat64(), metric.WithAttributes(currency))
	}
}

func (m serviceMetrics) recordStatusChange(ctx context.Context, status domain.Status) {
	if m.statusChanges != nil {
		m.statusChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

func (m serviceMetrics) recordRejected(ctx context.Context, status domain.Status) {
	if m.statusRejected != nil {
		m.statusRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

var _ ports.Service = (*Service)(nil)
