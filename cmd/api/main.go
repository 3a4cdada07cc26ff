package main

import (
	"context"
	"os"

	"github.com/yigit/admission/internal/pkg/logger"
	"github.com/yigit/admission/internal/server"
)

func main() {
	srv, err := server.NewServer(context.Background())
	if err != nil {
		// setup failures are already logged in detail by bootstrap
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// blocks until SIGINT/SIGTERM
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
