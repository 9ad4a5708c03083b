package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/fitlearn/quizlab-backend/internal/catalog"
	"github.com/fitlearn/quizlab-backend/internal/config"
	"github.com/fitlearn/quizlab-backend/internal/database"
	"github.com/fitlearn/quizlab-backend/internal/handler"
	"github.com/fitlearn/quizlab-backend/internal/logger"
	"github.com/fitlearn/quizlab-backend/internal/quiz"
	"github.com/fitlearn/quizlab-backend/internal/repository"
	"github.com/fitlearn/quizlab-backend/internal/router"
	"github.com/fitlearn/quizlab-backend/internal/service"
	"github.com/fitlearn/quizlab-backend/internal/validator"
	"github.com/fitlearn/quizlab-backend/internal/worker"
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
		Msg("Starting QuizLab Backend")

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
	authorRepo := repository.NewAuthorRepository(pool)
	memberRepo := repository.NewMemberRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)

	// ─── Initialize Catalog and Session Store ──────────────────────────
	cat := catalog.New()
	quizCache := catalog.NewQuizCache(quizRepo, cfg.QuizCacheTTL)
	sessionStore := quiz.NewSessionStore()

	// sessionCtx outlives individual requests: live session countdowns run
	// until shutdown.
	sessionCtx, sessionCancel := context.WithCancel(context.Background())
	defer sessionCancel()

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	quizService := service.NewQuizService(quizRepo, cat, rdb, log)
	sessionService := service.NewSessionService(sessionCtx, sessionRepo, quizCache, cat, sessionStore, rdb, log)
	resultsService := service.NewResultsService(sessionRepo, quizRepo, quizCache, cat, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:    handler.NewAuthHandler(authService, memberRepo, authorRepo),
		Quiz:    handler.NewQuizHandler(quizService),
		Portal:  handler.NewPortalHandler(sessionService),
		Results: handler.NewResultsHandler(resultsService),
		WS:      handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	answerWorker := worker.NewAnswerWorker(pool, rdb, log)
	submissionWorker := worker.NewSubmissionWorker(pool, rdb, log)

	go answerWorker.Start(workerCtx)
	go submissionWorker.Start(workerCtx)

	// ─── Prewarm Caches ───────────────────────────────────────────────
	// Load all published quizzes into Redis and the in-memory catalog
	// BEFORE accepting traffic, so the first member request never races a
	// lazy load.
	if err := quizService.PrewarmAllCaches(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

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

	// 2. Stop live session countdowns so pending submissions reach the queue.
	sessionCancel()

	// 3. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
