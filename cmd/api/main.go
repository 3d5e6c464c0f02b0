package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/infra/db"
	"storefront/internal/logging"
	"storefront/internal/server"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.GoEnv, "storefront-api")
	if err != nil {
		return err
	}

	app, err := server.NewApp(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := db.Migrate(app.DB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, app); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}
