// Package main provides storefront-admin, the operator CLI for the artwork storefront.
// It talks to the same postgres, redis, NATS and Kafka backends as the API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Apurer/go-gin-artstore-api/internal/app/api"
	"github.com/Apurer/go-gin-artstore-api/internal/platform/observability"
)

const appName = "storefront-admin"

var errNoDatabase = errors.New("POSTGRES_DSN is required for this command")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	a := &app{}
	err := rootCmd(a).ExecuteContext(ctx)
	a.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the state shared by subcommands. Backends are connected lazily so that
// commands like help never dial anything.
type app struct {
	logLevel string
	logger   *slog.Logger
	cfg      api.Config
	backends *api.Backends
	closers  []func()
}

func rootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Operate the artwork storefront",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := api.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			var level slog.Level
			if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
				level = slog.LevelWarn
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		migrateCmd(a),
		ordersCmd(a),
		auctionsCmd(a),
	)
	return cmd
}

func (a *app) connect(ctx context.Context) *api.Backends {
	if a.backends == nil {
		backends, closeBackends := api.ConnectBackends(ctx, a.cfg, appName, a.logger)
		a.backends = backends
		a.closers = append(a.closers, closeBackends)
	}
	return a.backends
}

func (a *app) instruments() *observability.Instruments {
	return &observability.Instruments{Logger: a.logger}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the storefront schema to POSTGRES_DSN",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// ConnectBackends migrates on connect and drops the DB handle if that fails.
			if a.connect(cmd.Context()).DB == nil {
				return errNoDatabase
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
