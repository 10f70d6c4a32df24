package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/cloudban/cloudban-api/internal/config"
	"github.com/cloudban/cloudban-api/internal/domain/banlist"
	"github.com/cloudban/cloudban-api/internal/domain/export"
	"github.com/cloudban/cloudban-api/internal/pkg/database"
	"github.com/cloudban/cloudban-api/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load settings")
	}
	logger.Init(logger.Config{Level: cfg.LogLevel, Debug: cfg.Debug})

	if !cfg.Export.Enabled() {
		log.Fatal().Msg("No export destination configured: set export.bucket or export.dir")
	}

	log.Info().
		Str("bucket", cfg.Export.Bucket).
		Str("dir", cfg.Export.Dir).
		Str("prefix", cfg.Export.Prefix).
		Dur("interval", cfg.Export.Interval).
		Msg("Starting export-worker")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	// Optional: Redis feed wake-ups (interval exports still run)
	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, exporting on interval only")
		rdb = nil
	}
	defer database.CloseRedis(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := export.OpenStorage(ctx, cfg.Export)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open export storage")
	}

	// Snapshots bypass the cache, so no cache client is needed here.
	source := banlist.NewService(banlist.NewRepository(db), nil, 0)
	worker := export.NewWorker(export.NewService(source, store, cfg.Export.Prefix), cfg.Export.Interval, rdb)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info().Msg("Shutdown signal received")
		cancel()
	}()

	worker.Run(ctx)
}
