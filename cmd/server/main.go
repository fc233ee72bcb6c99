package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phuslu/log"

	"github.com/woodid012/renew-portfolio-api/internal/app"
	"github.com/woodid012/renew-portfolio-api/internal/config"
	"github.com/woodid012/renew-portfolio-api/internal/logging"
	"github.com/woodid012/renew-portfolio-api/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log.Info().Str("version", version.Version).Str("env", cfg.Environment).Msg("starting")

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	application, err := app.New(startCtx, cfg)
	if err != nil {
		cancelStart()
		log.Fatal().Err(err).Msg("failed to initialise application")
	}

	if err := application.StartMaintenance(startCtx); err != nil {
		cancelStart()
		log.Fatal().Err(err).Msg("failed to schedule maintenance")
	}
	cancelStart()

	server := newServer(cfg.Server.Addr, application.Handler)

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := application.Close(ctx); err != nil {
		log.Error().Err(err).Msg("failed to close document store")
	}

	log.Info().Msg("server exited")
}

// newServer creates the HTTP server. There is no write timeout: model runs and event streams
// last as long as the backend needs.
func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
