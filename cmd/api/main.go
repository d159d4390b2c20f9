package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"

	"github.com/gigfinder/backend/internal/auth"
	"github.com/gigfinder/backend/internal/browse"
	"github.com/gigfinder/backend/internal/config"
	"github.com/gigfinder/backend/internal/dashboard"
	"github.com/gigfinder/backend/internal/engagement"
	"github.com/gigfinder/backend/internal/execution"
	"github.com/gigfinder/backend/internal/handlers"
	"github.com/gigfinder/backend/internal/jobs"
	"github.com/gigfinder/backend/internal/ledger"
	"github.com/gigfinder/backend/internal/models"
	"github.com/gigfinder/backend/internal/ratelimit"
	"github.com/gigfinder/backend/internal/router"
	"github.com/gigfinder/backend/internal/store"
	"github.com/gigfinder/backend/internal/telemetry"
	"github.com/gigfinder/backend/internal/validation"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Cannot reach PostgreSQL. Ensure Postgres is running, e.g. docker compose up -d", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	slog.Info("Connected to PostgreSQL database successfully!")

	if err := store.RunMigrations(ctx, pool); err != nil {
		slog.Error("Schema migrations failed", "error", err)
		os.Exit(1)
	}

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		slog.Error("Failed to create River migrator", "error", err)
		os.Exit(1)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		slog.Error("River migrate up failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Migrations applied")

	// Ledger
	ledgerRepo := ledger.NewRepository(pool)
	ledgerSvc := ledger.NewService(ledgerRepo, cfg.MinWithdrawal)
	viewer := ledger.NewViewer(ledgerSvc)

	// Settlement worker depends only on the ledger, so the River client can be built
	// before the jobs service that enqueues onto it.
	workers := river.NewWorkers()
	river.AddWorker(workers, execution.NewSettlePostingWorker(ledgerSvc, telemetry.ObserveSettlement, logger))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: cfg.SettlementWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		slog.Error("Failed to create River client", "error", err)
		os.Exit(1)
	}
	insertSettlement := func(ctx context.Context, tx pgx.Tx, args execution.SettlePostingArgs) error {
		_, err := riverClient.InsertTx(ctx, tx, args, nil)
		return err
	}

	validator := validation.MustNew()

	// Accounts
	authSvc := auth.NewService(auth.NewRepository(pool), cfg.JWTSecret)
	authHandler := auth.NewHandler(authSvc, validator, logger)

	// Postings (poster side)
	jobsSvc := jobs.NewService(jobs.NewRepository(pool), ledgerSvc, insertSettlement)
	jobsHandler := jobs.NewHandler(jobsSvc, validator, func(kind models.EngagementKind, accepted bool) {
		outcome := "rejected"
		if accepted {
			outcome = "accepted"
		}
		telemetry.Decisions.WithLabelValues(string(kind), outcome).Inc()
	}, logger)

	// Engagements (finder side)
	engagementRepo := engagement.NewRepository(pool)
	orchestrator := engagement.NewOrchestrator(engagementRepo)
	board := browse.NewBoard(engagementRepo)
	engagementHandler := &handlers.EngagementHandler{
		Orchestrator: orchestrator,
		Board:        board,
		Validator:    validator,
		Observe: func(kind models.EngagementKind, result string) {
			telemetry.Submissions.WithLabelValues(string(kind), result).Inc()
		},
		Logger: logger,
	}

	walletHandler := ledger.NewHandler(viewer, validator, func(result string) {
		telemetry.Withdrawals.WithLabelValues(result).Inc()
	}, logger)
	dashHandler := dashboard.NewHandler(orchestrator, board, viewer, logger)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	submitLimiter := ratelimit.NewTokenBucket(rdb, "submit", cfg.SubmitRateCapacity, cfg.SubmitRateRefill, cfg.SubmitRateTTL)

	api := router.New(router.Deps{
		Auth:          authHandler,
		Tokens:        authSvc,
		Jobs:          jobsHandler,
		Engagements:   engagementHandler,
		Wallet:        walletHandler,
		Dashboard:     dashHandler,
		SubmitLimiter: submitLimiter,
		OnRateLimited: telemetry.RateLimitRejects.Inc,
		Logger:        logger,
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Retry-After", "X-RateLimit-Remaining"},
		AllowCredentials: true,
	}).Handler(api)

	if err := riverClient.Start(ctx); err != nil {
		slog.Error("Failed to start River client", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.Port,
		Handler: corsHandler,
	}
	go func() {
		slog.Info("Starting HTTP server", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}
	if err := riverClient.Stop(shutdownCtx); err != nil {
		slog.Error("River stop failed", "error", err)
	}
}
