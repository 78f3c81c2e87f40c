// Command stubd runs the local stand-in for the remote tutor service. It
// serves the same endpoint surface with canned evaluations so the CLI can be
// developed and demoed offline.
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-tutor-cli/internal/config"
	"github.com/noah-isme/gema-tutor-cli/internal/stubserver"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	store, err := stubserver.Open(cfg.StubDatabase)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not open database")
	}
	if err := store.Seed(); err != nil {
		logger.Fatal().Err(err).Msg("could not seed demo data")
	}

	server := stubserver.New(store, stubserver.Config{Secret: cfg.StubSecret}, logger)

	go func() {
		logger.Info().Str("address", cfg.StubAddress()).Msg("stub server listening")
		if err := server.App.Listen(cfg.StubAddress()); err != nil {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	waitForShutdown(server, logger)
}

func waitForShutdown(server *stubserver.Server, logger zerolog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	if err := server.App.ShutdownWithTimeout(5 * time.Second); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
}
