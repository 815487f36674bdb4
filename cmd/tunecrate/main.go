package main

import (
	"context"
	"os"

	"tunecrate/internal/logging"
	"tunecrate/internal/postgres"
	"tunecrate/internal/store"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fallback := logging.New(logging.Config{})
		fallback.Fatal().Err(err).Msg("load config")
	}

	logger := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: os.Stdout,
	})
	logging.SetGlobal(logger)

	db, err := postgres.Open(context.Background(), cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer db.Close()

	dataStore := store.New(db)

	if err := bootstrapDemoData(context.Background(), db, dataStore); err != nil {
		logger.Fatal().Err(err).Msg("bootstrap demo data")
	}

	handler := newHTTPHandler(cfg, dataStore, logger)

	srv := newServer(cfg.Addr, handler)
	logger.Info().Str("addr", cfg.Addr).Msg("listening")
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}
