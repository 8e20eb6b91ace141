package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/asaniustaz/Campusconnect-sub000/internal/api"
	"github.com/asaniustaz/Campusconnect-sub000/internal/config"
	"github.com/asaniustaz/Campusconnect-sub000/internal/db"
	"github.com/asaniustaz/Campusconnect-sub000/internal/directory"
	"github.com/asaniustaz/Campusconnect-sub000/internal/logger"
	"github.com/asaniustaz/Campusconnect-sub000/internal/progress"
	"github.com/asaniustaz/Campusconnect-sub000/internal/queue"
	"github.com/asaniustaz/Campusconnect-sub000/internal/registry"
	"github.com/asaniustaz/Campusconnect-sub000/internal/results"
	"github.com/asaniustaz/Campusconnect-sub000/internal/scores"
	"github.com/asaniustaz/Campusconnect-sub000/internal/storage"
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

	log.Info().Str("version", cfg.App.Version).Msg("Starting API server")

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

	producer := queue.NewProducer(redisClient, cfg)
	tracker := progress.NewTracker(redisClient.Client(), cfg)

	// Initialize S3 storage
	s3Storage, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
	}

	registrySvc := registry.NewService(registryRepo, dirRepo, s3Storage, producer, tracker)
	engine := results.NewEngine(results.NewScale(cfg.Grading))

	// Initialize API handler
	handler := api.NewHandler(cfg, dirRepo, scoresRepo, registrySvc, engine, tracker)

	// Setup Gin router
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(api.CORSMiddleware())
	router.Use(api.LoggingMiddleware())
	router.Use(api.RecoveryMiddleware())

	// Setup routes
	api.SetupRoutes(router, handler)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Create context for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Shutdown server
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
