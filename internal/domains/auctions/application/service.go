package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/ports"
)

// ErrInvalidInput signals the request violated a listing invariant.
var ErrInvalidInput = errors.New("invalid auction input")

const releaseTimeout = 2 * time.Second

// Service implements the auction use cases on top of an ArtworkStore.
type Service struct {
	store          ports.ArtworkStore
	ledger         ports.BidLedger
	publishers     []ports.BidEventPublisher
	increment      decimal.Decimal
	now            func() time.Time
	newID          func() string
	onPublishError func(ctx context.Context, event domain.BidPlaced, err error)
	onReleaseError func(ctx context.Context, artworkID string, err error)
}

type Option func(*Service)

// WithBidLedger adds a shared compare-and-set check in front of the store update.
func WithBidLedger(ledger ports.BidLedger) Option {
	return func(s *Service) { s.ledger = ledger }
}

// WithEventPublishers fans accepted bids out to every publisher in order.
func WithEventPublishers(publishers ...ports.BidEventPublisher) Option {
	return func(s *Service) {
		for _, p := range publishers {
			if p != nil {
				s.publishers = append(s.publishers, p)
			}
		}
	}
}

// WithIncrement sets the step used for the minimum next bid.
func WithIncrement(increment decimal.Decimal) Option {
	return func(s *Service) {
		if increment.IsPositive() {
			s.increment = increment
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithPublishErrorHandler observes bid events that could not be delivered. The bid is already stored.
func WithPublishErrorHandler(fn func(ctx context.Context, event domain.BidPlaced, err error)) Option {
	return func(s *Service) {
		if fn != nil {
			s.onPublishError = fn
		}
	}
}

// WithReleaseErrorHandler observes ledger rollbacks that failed after the store rejected a bid.
func WithReleaseErrorHandler(fn func(ctx context.Context, artworkID string, err error)) Option {
	return func(s *Service) {
		if fn != nil {
			s.onReleaseError = fn
		}
	}
}

func NewService(store ports.ArtworkStore, opts ...Option) *Service {
	s := &Service{
		store:          store,
		increment:      domain.DefaultIncrement,
		now:            time.Now,
		newID:          uuid.NewString,
		onPublishError: func(context.Context, domain.BidPlaced, error) {},
		onReleaseError: func(context.Context, string, error) {},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Increment reports the configured bid step.
func (s *Service) Increment() decimal.Decimal {
	return s.increment
}

func (s *Service) ListArtwork(ctx context.Context, input ports.ListArtworkInput) (*domain.Artwork, error) {
	artwork, err := domain.NewArtwork(domain.NewArtworkParams{
		ID:             input.ID,
		Title:          input.Title,
		ArtistID:       input.ArtistID,
		Description:    input.Description,
		Price:          input.Price,
		BiddingEnabled: input.BiddingEnabled,
		StartPrice:     input.StartPrice,
		AuctionEndDate: input.AuctionEndDate,
		Now:            s.now(),
	})
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.store.Create(ctx, artwork); err != nil {
		return nil, err
	}
	return artwork, nil
}

func (s *Service) GetArtwork(ctx context.Context, id string) (*domain.Artwork, error) {
	return s.store.Get(ctx, id)
}

// ListAuctions returns bidding-enabled artworks.
func (s *Service) ListAuctions(ctx context.Context) ([]*domain.Artwork, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	auctions := make([]*domain.Artwork, 0, len(all))
	for _, a := range all {
		if a.BiddingEnabled {
			auctions = append(auctions, a)
		}
	}
	return auctions, nil
}

// PlaceBid validates and records a bid atomically for the artwork, then publishes it.
func (s *Service) PlaceBid(ctx context.Context, input ports.PlaceBidInput) (*domain.Artwork, error) {
	if input.Bidder.Anonymous() {
		return nil, domain.ErrAuthRequired
	}
	var (
		event    domain.BidPlaced
		reserved *reservation
	)
	updated, err := s.store.Update(ctx, input.ArtworkID, func(a *domain.Artwork) error {
		floor := a.HighestBid()
		previousWinner := a.WinningBidID
		bid, err := a.PlaceBid(input.Bidder, input.Amount, s.now(), s.increment, s.newID())
		if err != nil {
			return err
		}
		if s.ledger != nil {
			accepted, current, err := s.ledger.Reserve(ctx, a.ID, bid.ID, bid.Amount, floor)
			if err != nil {
				return fmt.Errorf("reserve bid: %w", err)
			}
			if !accepted {
				return &domain.BidTooLowError{Floor: current, Minimum: current.Add(s.increment)}
			}
			reserved = &reservation{artworkID: a.ID, bidID: bid.ID, previous: current, previousWinner: previousWinner}
		}
		event = domain.NewBidPlaced(s.newID(), bid, floor)
		return nil
	})
	if err != nil {
		if reserved != nil {
			s.release(ctx, *reserved)
		}
		return nil, mapError(err)
	}
	s.publish(ctx, event)
	return updated, nil
}

type reservation struct {
	artworkID      string
	bidID          string
	previous       decimal.Decimal
	previousWinner string
}

// release rolls back a ledger reservation for a bid the store did not keep.
// It runs detached from ctx because a cancelled request is one of the ways the commit fails.
func (s *Service) release(ctx context.Context, r reservation) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if _, err := s.ledger.Release(releaseCtx, r.artworkID, r.bidID, r.previous, r.previousWinner); err != nil {
		s.onReleaseError(ctx, r.artworkID, err)
	}
}

// Summary computes every derived query from one snapshot of the artwork.
func (s *Service) Summary(ctx context.Context, id string) (*ports.Summary, error) {
	artwork, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	summary := &ports.Summary{
		Artwork:        artwork,
		HighestBid:     artwork.HighestBid(),
		MinimumNextBid: artwork.MinimumNextBid(s.increment),
		TimeRemaining:  artwork.TimeRemainingAt(now),
		Closed:         artwork.Closed(now),
	}
	if bid, ok := artwork.HighestBidder(); ok {
		summary.HighestBidder = &bid
	}
	return summary, nil
}

func (s *Service) publish(ctx context.Context, event domain.BidPlaced) {
	for _, p := range s.publishers {
		if err := p.Publish(ctx, event); err != nil {
			s.onPublishError(ctx, event, err)
		}
	}
}

func mapError(err error) error {
	if errors.Is(err, domain.ErrMissingArtworkID) ||
		errors.Is(err, domain.ErrMissingTitle) ||
		errors.Is(err, domain.ErrNegativePrice) ||
		errors.Is(err, domain.ErrInvalidAmount) ||
		errors.Is(err, domain.ErrAuctionTerms) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

var _ ports.Service = (*Service)(nil)
