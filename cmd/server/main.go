package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sarkar/internal/app"
	"sarkar/internal/platform/config"
	"sarkar/internal/platform/httpserver"
	"sarkar/internal/platform/logger"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router, starts the
// deadline sweep scheduler, and keeps the server lifecycle small. Business
// logic lives in internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log, app.Options{})
	if err != nil {
		log.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if cfg.Sweep.Enabled {
		scheduler, err := a.Scheduler()
		if err != nil {
			log.Error("invalid sweep schedule", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("sweep scheduler stopped", "error", err)
			}
		}()
	}

	srv := httpserver.New(cfg.Addr, a.Router())
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting sarkar api", "addr", cfg.Addr, "environment", cfg.Environment, "push_driver", cfg.Push.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		log.Error("server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
