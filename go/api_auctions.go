package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	auctionhttpmapper "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/adapters/http/mapper"
	auctionsports "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/ports"
)

// LiveFeed upgrades a request into a websocket subscription for one artwork.
type LiveFeed interface {
	Serve(w http.ResponseWriter, r *http.Request, artworkID string) error
}

// AuctionAPI wires HTTP transport with the auctions bounded context.
type AuctionAPI struct {
	service auctionsports.Service
	live    LiveFeed
}

// NewAuctionAPI creates an AuctionAPI. live may be nil when no feed is configured.
func NewAuctionAPI(service auctionsports.Service, live LiveFeed) AuctionAPI {
	return AuctionAPI{service: service, live: live}
}

// Post /v1/auctions
// Registers an artwork for sale or auction
func (api *AuctionAPI) ListArtwork(c *gin.Context) {
	var payload auctionhttpmapper.ListArtworkRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.BadRequest(c, err.Error())
		return
	}
	artwork, err := api.service.ListArtwork(c.Request.Context(), auctionhttpmapper.ToListArtworkInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, auctionhttpmapper.FromArtwork(artwork))
}

// Get /v1/auctions
// Lists the artworks open for bidding
func (api *AuctionAPI) ListAuctions(c *gin.Context) {
	artworks, err := api.service.ListAuctions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, auctionhttpmapper.FromArtworkList(artworks))
}

// Get /v1/auctions/:artworkId
// Returns the artwork with its highest bid, next minimum and time remaining
func (api *AuctionAPI) GetAuction(c *gin.Context) {
	artworkID, ok := pathParam(c, "artworkId")
	if !ok {
		return
	}
	summary, err := api.service.Summary(c.Request.Context(), artworkID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, auctionhttpmapper.FromSummary(summary))
}

// Post /v1/auctions/:artworkId/bids
// Places a bid and returns the refreshed auction
func (api *AuctionAPI) PlaceBid(c *gin.Context) {
	artworkID, ok := pathParam(c, "artworkId")
	if !ok {
		return
	}
	var payload auctionhttpmapper.PlaceBidRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.BadRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	if _, err := api.service.PlaceBid(ctx, auctionhttpmapper.ToPlaceBidInput(artworkID, payload)); err != nil {
		respondError(c, err)
		return
	}
	summary, err := api.service.Summary(ctx, artworkID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, auctionhttpmapper.FromSummary(summary))
}

// Get /v1/auctions/:artworkId/live
// Streams accepted bids for the artwork over a websocket
func (api *AuctionAPI) WatchAuction(c *gin.Context) {
	artworkID, ok := pathParam(c, "artworkId")
	if !ok {
		return
	}
	if api.live == nil {
		DefaultHandleFunc(c)
		return
	}
	if _, err := api.service.GetArtwork(c.Request.Context(), artworkID); err != nil {
		respondError(c, err)
		return
	}
	if err := api.live.Serve(c.Writer, c.Request, artworkID); err != nil {
		_ = c.Error(err)
	}
}
