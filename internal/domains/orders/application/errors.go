package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrAuthRequired signals a guest attempted to act on an order.
	ErrAuthRequired = errors.New("authentication required")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrInvalidPaymentStatus) ||
		errors.Is(err, domain.ErrCancellationReasonRequired) ||
		errors.Is(err, domain.ErrInvalidCancellationReason) ||
		errors.Is(err, domain.ErrMissingUser) ||
		errors.Is(err, domain.ErrNoItems) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrMissingPaymentMethod) ||
		errors.Is(err, domain.ErrMissingShippingAddress) ||
		errors.Is(err, domain.ErrNegativeAmount) ||
		errors.Is(err, domain.ErrInvalidAmount) ||
		errors.Is(err, ports.ErrArtworkNotFound) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
