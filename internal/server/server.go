package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"storefront/internal/worker"

	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

// Run serves HTTP and the background workers until ctx is cancelled, then
// drains in-flight requests.
func Run(ctx context.Context, a *App) error {
	e := NewEcho(a)

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	var wg sync.WaitGroup
	if a.Cfg.ReconcileInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Every(workerCtx, "reconcile", a.Cfg.ReconcileInterval, a.Log, func(ctx context.Context) error {
				_, err := a.Reconcile.Run(ctx)
				return err
			})
		}()
	}
	if a.Relay != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Every(workerCtx, "outbox_relay", a.Cfg.OutboxInterval, a.Log, a.Relay.Pass)
		}()
	} else {
		a.Log.Info("KAFKA_BROKERS not set, outbox relay disabled")
	}

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + a.Cfg.Port
		a.Log.Info("http server listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	a.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		a.Log.Error("http shutdown", zap.Error(err))
	}
	stopWorkers()
	wg.Wait()

	return runErr
}
