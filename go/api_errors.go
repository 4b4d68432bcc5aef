package storefrontserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	auctionsapp "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/application"
	auctionsdomain "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/domain"
	auctionsports "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/ports"
	ordersapp "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/application"
	ordersdomain "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-gin-artstore-api/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-gin-artstore-api/internal/shared/errors"
)

var responder = apierrors.NewChainedResponder("", orderProblem, auctionProblem)

func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

func orderProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ordersports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail("Order not found"), true
	case errors.Is(err, ordersapp.ErrAuthRequired):
		return apierrors.ErrUnauthorized, true
	case errors.Is(err, ordersdomain.ErrCancelNotAllowed):
		return apierrors.ErrInvalidTransition.WithDetail("Order cannot be cancelled at this stage"), true
	case errors.Is(err, ordersdomain.ErrInvalidTransition):
		return apierrors.ErrInvalidTransition.WithDetail(err.Error()), true
	case errors.Is(err, ordersapp.ErrInvalidInput):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	case errors.Is(err, ordersports.ErrAlreadyExists), errors.Is(err, ordersports.ErrConcurrentUpdate):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func auctionProblem(err error) (apierrors.ProblemDetail, bool) {
	var tooLow *auctionsdomain.BidTooLowError
	switch {
	case errors.As(err, &tooLow):
		return apierrors.NewBidTooLowProblem(tooLow.Floor.StringFixed(2), tooLow.Minimum.StringFixed(2)), true
	case errors.Is(err, auctionsports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail("Artwork not found"), true
	case errors.Is(err, auctionsdomain.ErrAuthRequired):
		return apierrors.ErrUnauthorized, true
	case errors.Is(err, auctionsdomain.ErrAuctionClosed):
		return apierrors.ErrAuctionClosed, true
	case errors.Is(err, auctionsdomain.ErrBiddingDisabled):
		return apierrors.ErrBiddingDisabled, true
	case errors.Is(err, auctionsapp.ErrInvalidInput):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	case errors.Is(err, auctionsports.ErrAlreadyExists), errors.Is(err, auctionsports.ErrConcurrentUpdate):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
