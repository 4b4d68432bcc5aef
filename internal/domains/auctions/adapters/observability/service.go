package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/ports"
)

const tracerName = "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/adapters/observability/service"

// Service decorates the auctions port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
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
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func (s *Service) ListArtwork(ctx context.Context, input ports.ListArtworkInput) (*domain.Artwork, error) {
	ctx, span := s.tracer.Start(ctx, "Service.ListArtwork", trace.WithAttributes(
		attribute.String("artwork.id", input.ID),
		attribute.Bool("artwork.bidding_enabled", input.BiddingEnabled),
	))
	defer span.End()

	artwork, err := s.inner.ListArtwork(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list artwork", slog.String("artwork.id", input.ID))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "artwork listed",
		slog.String("artwork.id", artwork.ID),
		slog.Bool("bidding_enabled", artwork.BiddingEnabled),
	)
	return artwork, nil
}

func (s *Service) GetArtwork(ctx context.Context, id string) (*domain.Artwork, error) {
	ctx, span := s.tracer.Start(ctx, "Service.GetArtwork", trace.WithAttributes(attribute.String("artwork.id", id)))
	defer span.End()

	artwork, err := s.inner.GetArtwork(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load artwork", slog.String("artwork.id", id))
	}
	return artwork, nil
}

func (s *Service) ListAuctions(ctx context.Context) ([]*domain.Artwork, error) {
	ctx, span := s.tracer.Start(ctx, "Service.ListAuctions")
	defer span.End()

	artworks, err := s.inner.ListAuctions(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list auctions")
	}
	span.SetAttributes(attribute.Int("auction.result.count", len(artworks)))
	return artworks, nil
}

// PlaceBid counts accepted bids and rejections by reason. Rejections are routine and logged at info.
func (s *Service) PlaceBid(ctx context.Context, input ports.PlaceBidInput) (*domain.Artwork, error) {
	ctx, span := s.tracer.Start(ctx, "Service.PlaceBid", trace.WithAttributes(
		attribute.String("artwork.id", input.ArtworkID),
		attribute.String("bid.amount", input.Amount.String()),
	))
	defer span.End()

	artwork, err := s.inner.PlaceBid(ctx, input)
	if err != nil {
		if reason := rejectionReason(err); reason != "" {
			s.metrics.recordRejected(ctx, reason)
			span.SetAttributes(attribute.String("bid.rejected", reason))
			s.logger.LogAttrs(ctx, slog.LevelInfo, "bid rejected",
				slog.String("artwork.id", input.ArtworkID),
				slog.String("reason", reason),
			)
			return nil, err
		}
		return nil, s.handleError(ctx, span, err, "failed to place bid", slog.String("artwork.id", input.ArtworkID))
	}
	s.metrics.recordPlaced(ctx)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "bid placed",
		slog.String("artwork.id", artwork.ID),
		slog.String("bid.id", artwork.WinningBidID),
		slog.String("bid.amount", input.Amount.StringFixed(2)),
	)
	return artwork, nil
}

func (s *Service) Summary(ctx context.Context, id string) (*ports.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "Service.Summary", trace.WithAttributes(attribute.String("artwork.id", id)))
	defer span.End()

	summary, err := s.inner.Summary(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to summarize auction", slog.String("artwork.id", id))
	}
	span.SetAttributes(attribute.Bool("auction.closed", summary.Closed))
	return summary, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuthRequired):
		return "auth_required"
	case errors.Is(err, domain.ErrBiddingDisabled):
		return "bidding_disabled"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrBidTooLow):
		return "bid_too_low"
	case errors.Is(err, domain.ErrAuctionClosed):
		return "auction_closed"
	default:
		return ""
	}
}

type serviceMetrics struct {
	bidsPlaced   metric.Int64Counter
	bidsRejected metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	placed, _ := m.Int64Counter("auctions.service.bids_placed", metric.WithDescription("Number of accepted bids"))
	rejected, _ := m.Int64Counter("auctions.service.bids_rejected", metric.WithDescription("Number of rejected bids by reason"))
	return serviceMetrics{bidsPlaced: placed, bidsRejected: rejected}
}

func (m serviceMetrics) recordPlaced(ctx context.Context) {
	if m.bidsPlaced != nil {
		m.bidsPlaced.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordRejected(ctx context.Context, reason string) {
	if m.bidsRejected != nil {
		m.bidsRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}

var _ ports.Service = (*Service)(nil)
