package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/leavedesk/leavegate-backend/internal/config"
	"github.com/leavedesk/leavegate-backend/internal/database"
	"github.com/leavedesk/leavegate-backend/internal/handler"
	"github.com/leavedesk/leavegate-backend/internal/judge"
	"github.com/leavedesk/leavegate-backend/internal/logger"
	"github.com/leavedesk/leavegate-backend/internal/repository"
	"github.com/leavedesk/leavegate-backend/internal/router"
	"github.com/leavedesk/leavegate-backend/internal/service"
	"github.com/leavedesk/leavegate-backend/internal/validator"
	"github.com/leavedesk/leavegate-backend/internal/worker"
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
		Msg("Starting LeaveGate Backend")

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
	settingRepo := repository.NewSettingRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	leaveRepo := repository.NewLeaveRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	violationRepo := repository.NewViolationRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	judgeClient := judge.NewClient(cfg.JudgeURL, cfg.JudgeAPIKey, cfg.JudgeTimeout, log)

	authService := service.NewAuthService(cfg, userRepo)
	policyService := service.NewPolicyService(settingRepo)
	questionService := service.NewQuestionService(questionRepo)
	provisionService := service.NewProvisionService(questionRepo, sessionRepo, leaveRepo, policyService, rdb, log)
	leaveService := service.NewLeaveService(leaveRepo, provisionService, policyService, log)
	sessionService := service.NewSessionService(sessionRepo, leaveRepo, violationRepo, policyService, judgeClient, rdb, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Leave:    handler.NewLeaveHandler(leaveService, sessionService),
		Test:     handler.NewTestHandler(sessionService),
		Question: handler.NewQuestionHandler(questionService),
		Setting:  handler.NewSettingHandler(policyService),
		WS:       handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	answersWorker := worker.NewAnswersWorker(pool, rdb, log)
	violationWorker := worker.NewViolationWorker(pool, rdb, log)

	go answersWorker.Start(workerCtx)
	go violationWorker.Start(workerCtx)

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

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
