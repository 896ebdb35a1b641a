package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/nfrund/folio/internal/config"
	"github.com/nfrund/folio/internal/logging"
	"github.com/nfrund/folio/internal/server"
)

func main() {
	cfg := config.New()
	logging.New()

	// Create a new server instance.
	s, err := server.New(context.Background(), cfg)
	if err != nil {
		slog.Error("Failed to initialize server", "event", "server_init_failed", "error", err)
		os.Exit(1)
	}

	// Register all application routes.
	s.RegisterRoutes()

	// Start the server.
	if err := s.Start(); err != nil {
		slog.Error("Server stopped with error", "event", "server_failed", "error", err)
		os.Exit(1)
	}
}
