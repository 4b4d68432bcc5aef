// Package errors renders RFC 7807 Problem Details for the storefront HTTP API.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail represents an RFC 7807 Problem Details response.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithInstance returns a copy with the given instance URI.
func (p ProblemDetail) WithInstance(instance string) ProblemDetail {
	p.Instance = instance
	return p
}

// WithExtension returns a copy with an additional extension property.
// The extension map is copied so templates are never mutated.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	ext := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		ext[k] = v
	}
	ext[key] = value
	p.Extensions = ext
	return p
}

// Problem types as URI references.
const (
	TypeValidation        = "/problems/validation-error"
	TypeNotFound          = "/problems/not-found"
	TypeConflict          = "/problems/conflict"
	TypeInternal          = "/problems/internal-error"
	TypeUnauthorized      = "/problems/unauthorized"
	TypeBadRequest        = "/problems/bad-request"
	TypeInvalidTransition = "/problems/invalid-transition"
	TypeBidTooLow         = "/problems/bid-too-low"
	TypeAuctionClosed     = "/problems/auction-closed"
	TypeBiddingDisabled   = "/problems/bidding-disabled"
)

var (
	ErrNotFound = ProblemDetail{
		Type:   TypeNotFound,
		Title:  "Resource Not Found",
		Status: http.StatusNotFound,
	}

	ErrValidation = ProblemDetail{
		Type:   TypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
	}

	ErrBadRequest = ProblemDetail{
		Type:   TypeBadRequest,
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
	}

	ErrConflict = ProblemDetail{
		Type:   TypeConflict,
		Title:  "Conflict",
		Status: http.StatusConflict,
	}

	ErrInternal = ProblemDetail{
		Type:   TypeInternal,
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
	}

	// ErrUnauthorized is returned to guests attempting an action that needs an identity.
	ErrUnauthorized = ProblemDetail{
		Type:   TypeUnauthorized,
		Title:  "Unauthorized",
		Status: http.StatusUnauthorized,
		Detail: "You must be logged in",
	}

	// ErrInvalidTransition rejects an order status change the lifecycle does not allow.
	ErrInvalidTransition = ProblemDetail{
		Type:   TypeInvalidTransition,
		Title:  "Invalid Status Transition",
		Status: http.StatusConflict,
	}

	// ErrBidTooLow carries the floor and the suggested minimum as extensions.
	ErrBidTooLow = ProblemDetail{
		Type:   TypeBidTooLow,
		Title:  "Bid Too Low",
		Status: http.StatusUnprocessableEntity,
	}

	ErrAuctionClosed = ProblemDetail{
		Type:   TypeAuctionClosed,
		Title:  "Auction Closed",
		Status: http.StatusConflict,
		Detail: "This auction has ended",
	}

	ErrBiddingDisabled = ProblemDetail{
		Type:   TypeBiddingDisabled,
		Title:  "Bidding Disabled",
		Status: http.StatusConflict,
		Detail: "Bidding is not enabled for this artwork",
	}
)

// NewValidationProblem creates a validation error with field-level details.
func NewValidationProblem(fieldErrors map[string]string) ProblemDetail {
	return ErrValidation.WithExtension("fields", fieldErrors)
}

// NewBidTooLowProblem reports the amount a bid had to beat and the suggested next bid.
func NewBidTooLowProblem(floor, minimum string) ProblemDetail {
	return ErrBidTooLow.
		WithDetail(fmt.Sprintf("Bid must be higher than %s", floor)).
		WithExtension("floor", floor).
		WithExtension("minimumBid", minimum)
}
