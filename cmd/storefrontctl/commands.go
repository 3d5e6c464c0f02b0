package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/infra/db"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with the reconcile and outbox workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, app)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := db.Migrate(app.DB); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func sweepSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-sessions",
		Short: "Delete STAGED checkout sessions past their expiry",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			n, err := app.Reconcile.SweepExpiredSessions(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired sessions\n", n)
			return nil
		},
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Sweep expired sessions and resume stuck verifications once",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			rep, err := app.Reconcile.Run(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, rep)
		},
	}
}

func relayOutboxCmd() *cobra.Command {
	var loops int

	cmd := &cobra.Command{
		Use:   "relay-outbox",
		Short: "Publish pending outbox events to Kafka",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if app.Relay == nil {
				return fmt.Errorf("KAFKA_BROKERS is required")
			}
			total := 0
			for i := 0; i < loops; i++ {
				n, err := app.Relay.RelayOnce(cmd.Context())
				total += n
				if err != nil {
					return err
				}
				if n == 0 {
					break
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %d events\n", total)
			return nil
		},
	}

	cmd.Flags().IntVarP(&loops, "batches", "n", 10, "maximum batches to send")
	return cmd
}

func createDiscountCmd() *cobra.Command {
	var (
		actor   string
		percent string
		limit   int64
	)

	cmd := &cobra.Command{
		Use:   "create-discount [code]",
		Short: "Create a discount code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pct, err := decimal.NewFromString(percent)
			if err != nil {
				return fmt.Errorf("invalid --percent: %w", err)
			}

			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			d, err := app.Discount.Create(cmd.Context(), actor, usecase.CreateDiscountInput{
				Code:       args[0],
				Percentage: pct,
				Limit:      limit,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, d)
		},
	}

	cmd.Flags().StringVarP(&percent, "percent", "p", "", "percentage off, e.g. 10 or 12.5")
	cmd.Flags().Int64VarP(&limit, "limit", "l", 0, "maximum number of redemptions")
	cmd.Flags().StringVar(&actor, "actor", "cli", "actor recorded in the audit log")
	_ = cmd.MarkFlagRequired("percent")
	_ = cmd.MarkFlagRequired("limit")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

