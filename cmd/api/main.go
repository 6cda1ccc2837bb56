package main

import (
	"context"
	"flag"
	"os"

	"github.com/bobasi/bursary/internal/pkg/logger"
	"github.com/bobasi/bursary/internal/server"
)

// @title Bobasi Bursary API
// @version 1.0
// @description Bursary applications, committee reviews and disbursements for the Bobasi constituency fund

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML configuration file")
	flag.Parse()

	srv, err := server.NewServer(context.Background(), *configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
