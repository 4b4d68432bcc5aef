package ports

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
)

var ErrArtworkNotFound = errors.New("artwork not found in catalog")

// CatalogArtwork is the read-only artwork data snapshotted into order items.
type CatalogArtwork struct {
	ID       string
	Title    string
	ArtistID string
	Price    decimal.Decimal
}

// ArtworkCatalog resolves artworks for checkout.
type ArtworkCatalog interface {
	Artwork(ctx context.Context, id string) (CatalogArtwork, error)
}

// EventPublisher ships order domain events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.Event) error
}

// WorkflowOrchestrator runs order operations that carry follow-up work.
type WorkflowOrchestrator interface {
	CancelOrder(ctx context.Context, input SetStatusInput) (*domain.Order, error)
}
