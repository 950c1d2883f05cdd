package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"queueless/internal/config"
	"queueless/internal/database"
	"queueless/internal/domain"
	"queueless/internal/logging"
	"queueless/internal/repository"
)

// Revoked session keys expire on their own in Redis; this job only settles
// reservations and queue entries nobody closed.
func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()
	log := logger.With().Str("job", "session_cleanup").Logger()

	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now()
	reservations, err := repository.NewReservationRepository(db).
		CancelStalePending(ctx, now, "Not confirmed before start")
	if err != nil {
		log.Fatal().Err(err).Msg("cancel stale reservations failed")
	}

	today := domain.StartOfDay(now.In(cfg.Location()))
	entries, err := repository.NewQueueRepository(db).CancelStale(ctx, today)
	if err != nil {
		log.Fatal().Err(err).Msg("cancel stale queue entries failed")
	}

	log.Info().
		Int64("reservations", reservations).
		Int64("queue_entries", entries).
		Msg("cleanup completed")
}
