package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/asaniustaz/Campusconnect-sub000/internal/config"
	"github.com/asaniustaz/Campusconnect-sub000/internal/db"
	"github.com/asaniustaz/Campusconnect-sub000/internal/directory"
	"github.com/asaniustaz/Campusconnect-sub000/internal/logger"
	"github.com/asaniustaz/Campusconnect-sub000/internal/progress"
	"github.com/asaniustaz/Campusconnect-sub000/internal/queue"
	"github.com/asaniustaz/Campusconnect-sub000/internal/registry"
	"github.com/asaniustaz/Campusconnect-sub000/internal/scores"
	"github.com/asaniustaz/Campusconnect-sub000/internal/storage"
	"github.com/asaniustaz/Campusconnect-sub000/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting ingestion worker")

	// Initialize database
	database, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	// Initialize repositories
	dirRepo := directory.NewRepository(database)
	scoresRepo := scores.NewRepository(database)
	registryRepo := registry.NewRepository(database)

	// Initialize Redis client
	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	tracker := progress.NewTracker(redisClient.Client(), cfg)

	// Initialize S3 storage
	s3Storage, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
	}

	// Create ingestion worker
	ingestionWorker := worker.NewIngestionWorker(cfg, registryRepo, dirRepo, scoresRepo, s3Storage, tracker, redisClient)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start worker
	go func() {
		if err := ingestionWorker.Start(ctx); err != nil && err != context.Canceled {
			log.Fatal().Err(err).Msg("Ingestion worker failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down ingestion worker...")

	// Cancel context to stop worker
	cancel()
	ingestionWorker.Stop()

	log.Info().Msg("Ingestion worker exited")
}
