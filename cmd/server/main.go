package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shikshaprep/mocktest-backend/internal/config"
	"github.com/shikshaprep/mocktest-backend/internal/database"
	"github.com/shikshaprep/mocktest-backend/internal/handler"
	"github.com/shikshaprep/mocktest-backend/internal/logger"
	"github.com/shikshaprep/mocktest-backend/internal/repository"
	"github.com/shikshaprep/mocktest-backend/internal/router"
	"github.com/shikshaprep/mocktest-backend/internal/service"
	"github.com/shikshaprep/mocktest-backend/internal/validator"
	"github.com/shikshaprep/mocktest-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("ai_provider", cfg.AIProvider).
		Msg("Starting ShikshaPrep Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	testRepo := repository.NewMockTestRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	userService := service.NewUserService(userRepo, authService)
	testService := service.NewMockTestService(testRepo, rdb, log)
	uploadService := service.NewUploadService(cfg, testRepo, rdb, log)

	extractor := service.NewTextExtractor()
	generator, err := service.NewQuestionGenerator(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize question generator")
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:   handler.NewAuthHandler(userService),
		Upload: handler.NewUploadHandler(uploadService),
		Test:   handler.NewTestHandler(testService),
		Admin:  handler.NewAdminHandler(userService, testService),
		WS:     handler.NewWSHandler(rdb, testService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	ingestWorker := worker.NewIngestWorker(testRepo, extractor, generator, testService, rdb, cfg, log)
	go ingestWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the ingestion pool. In-flight jobs are safe to abandon:
	// their records stay in processing and the queue entry is gone, so
	// a stuck test reads as failed-by-restart rather than corrupted.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	if closer, ok := generator.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
