package main

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Apurer/go-gin-artstore-api/internal/app/api"
	auctionsnats "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/adapters/events/nats"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/adapters/http/mapper"
	auctionsredis "github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/adapters/redis"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/adapters/wire"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/ports"
)

func auctionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auctions",
		Short: "Inspect auctions and place bids",
	}
	cmd.AddCommand(auctionShowCmd(a), auctionBidCmd(a), auctionLedgerCmd(a), auctionWatchCmd(a))
	return cmd
}

func (a *app) auctionService(cmd *cobra.Command) (ports.Service, error) {
	backends := a.connect(cmd.Context())
	if backends.DB == nil {
		return nil, errNoDatabase
	}
	return api.NewAuctionsService(cmd.Context(), a.cfg, backends, a.instruments(), nil), nil
}

func auctionShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ARTWORK_ID",
		Short: "Print an artwork with its highest bid, minimum next bid and time remaining",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := a.auctionService(cmd)
			if err != nil {
				return err
			}
			summary, err := service.Summary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), mapper.FromSummary(summary))
		},
	}
}

func auctionBidCmd(a *app) *cobra.Command {
	var req mapper.PlaceBidRequest
	var amount string
	cmd := &cobra.Command{
		Use:   "bid ARTWORK_ID",
		Short: "Place a bid on behalf of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}
			req.Amount = parsed
			service, err := a.auctionService(cmd)
			if err != nil {
				return err
			}
			if _, err := service.PlaceBid(cmd.Context(), mapper.ToPlaceBidInput(args[0], req)); err != nil {
				return err
			}
			summary, err := service.Summary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), mapper.FromSummary(summary))
		},
	}
	cmd.Flags().StringVar(&req.UserID, "user", "", "Bidding user id")
	cmd.Flags().StringVar(&req.UserName, "name", "", "Bidder display name")
	cmd.Flags().StringVar(&amount, "amount", "", "Bid amount")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

type ledgerView struct {
	ArtworkID  string `json:"artworkId"`
	CurrentBid string `json:"currentBid"`
	WinningBid string `json:"winningBidId,omitempty"`
}

func auctionLedgerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ledger ARTWORK_ID",
		Short: "Print the redis bid ledger entry for an artwork",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backends := a.connect(cmd.Context())
			if backends.Redis == nil {
				return errors.New("REDIS_ADDR is required for this command")
			}
			amount, winner, err := auctionsredis.NewLedger(backends.Redis).Current(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ledgerView{
				ArtworkID:  args[0],
				CurrentBid: amount.StringFixed(2),
				WinningBid: winner,
			})
		},
	}
}

func auctionWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [ARTWORK_ID]",
		Short: "Replay and follow archived bid events from JetStream",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backends := a.connect(cmd.Context())
			if backends.JetStream == nil {
				return errors.New("NATS_URL is required for this command")
			}
			var artworkID string
			if len(args) == 1 {
				artworkID = args[0]
			}
			out := cmd.OutOrStdout()
			return auctionsnats.Consume(cmd.Context(), backends.JetStream, artworkID, func(event wire.BidEvent) {
				_ = printJSON(out, event)
			})
		},
	}
}
