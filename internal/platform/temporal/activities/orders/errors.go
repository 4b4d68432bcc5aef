package orders

import (
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/application"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/ports"
)

// rejection maps a business error to the application error type carried across the Temporal boundary.
// Invalid marks errors the service reports wrapped in application.ErrInvalidInput.
type rejection struct {
	Type    string
	Err     error
	Invalid bool
}

// Ordered most specific first: ErrCancelNotAllowed wraps ErrInvalidTransition.
var rejections = []rejection{
	{Type: "CancelNotAllowed", Err: domain.ErrCancelNotAllowed},
	{Type: "InvalidTransition", Err: domain.ErrInvalidTransition},
	{Type: "OrderNotFound", Err: ports.ErrNotFound},
	{Type: "AuthRequired", Err: application.ErrAuthRequired},
	{Type: "InvalidStatus", Err: domain.ErrInvalidStatus, Invalid: true},
	{Type: "CancellationReasonRequired", Err: domain.ErrCancellationReasonRequired, Invalid: true},
	{Type: "InvalidCancellationReason", Err: domain.ErrInvalidCancellationReason, Invalid: true},
}

// EncodeError turns business rejections into non-retryable application errors.
// Anything else is returned unchanged so Temporal retries it.
func EncodeError(err error) error {
	if err == nil {
		return nil
	}
	for _, r := range rejections {
		if errors.Is(err, r.Err) {
			return temporal.NewNonRetryableApplicationError(err.Error(), r.Type, err)
		}
	}
	return err
}

// DecodeError restores the business error behind a workflow or activity failure so callers
// can match it with errors.Is as if the service had been called directly.
func DecodeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	for _, r := range rejections {
		if appErr.Type() != r.Type {
			continue
		}
		if r.Invalid {
			return fmt.Errorf("%w: %w", application.ErrInvalidInput, r.Err)
		}
		return r.Err
	}
	return err
}
