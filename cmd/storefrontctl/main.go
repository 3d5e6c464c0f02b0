package main

import (
	"fmt"
	"os"

	"storefront/internal/config"
	"storefront/internal/logging"
	"storefront/internal/server"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "storefrontctl",
		Short:         "Operations for the storefront checkout pipeline",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(sweepSessionsCmd())
	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(relayOutboxCmd())
	rootCmd.AddCommand(createDiscountCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openApp loads config and builds the app; callers must Close it.
func openApp() (*server.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.GoEnv, "storefrontctl")
	if err != nil {
		return nil, err
	}
	return server.NewApp(cfg, logger)
}
