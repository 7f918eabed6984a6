// Command reviewfeed serves movie reviews, reactions and viewer lists over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/shell/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("reviewfeed failed", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := cfg.Logging.NewLogger(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry, err := newTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer telemetry.shutdown(logger)

	stores, err := openStores(ctx, cfg, logger, telemetry)
	if err != nil {
		return err
	}
	defer stores.close()

	app, err := wire(cfg, logger, telemetry, stores)
	if err != nil {
		return err
	}
	defer app.controller.Close()

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      app.server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	backgroundDone := make(chan error, 1)
	go func() {
		backgroundDone <- stores.runTailer(ctx)
	}()

	serverDone := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "http server listening", "addr", cfg.Server.Addr)
		serverDone <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.InfoContext(ctx, "shutdown signal received")
	case err = <-serverDone:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server stopped: %w", err)
		}
	case err = <-backgroundDone:
		if err != nil {
			return fmt.Errorf("review store tailer stopped: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()

	// hijacked websocket connections are not tracked by Shutdown, closing the feeds ends them
	app.controller.Close()

	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	logger.InfoContext(shutdownCtx, "reviewfeed stopped")

	return nil
}
