package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/iho/payflow/internal/adapter/client"
	httpAdapter "github.com/iho/payflow/internal/adapter/http"
	"github.com/iho/payflow/internal/adapter/http/handler"
	"github.com/iho/payflow/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/payflow/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/payflow/internal/adapter/repository/redis"
	"github.com/iho/payflow/internal/infrastructure/config"
	"github.com/iho/payflow/internal/infrastructure/eventpublisher"
	"github.com/iho/payflow/internal/infrastructure/logger"
	"github.com/iho/payflow/internal/infrastructure/metrics"
	"github.com/iho/payflow/internal/infrastructure/postgres"
	"github.com/iho/payflow/internal/infrastructure/redis"
	"github.com/iho/payflow/internal/infrastructure/sweeper"
	"github.com/iho/payflow/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	reservationRepo := postgresRepo.NewReservationRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	paymentRepo := postgresRepo.NewPaymentRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// With the outbox disabled events are silently discarded and no
	// publisher worker runs.
	var outboxRepo usecase.OutboxRepository = postgresRepo.NewOutboxRepository(pool)
	if !cfg.OutboxEnabled {
		outboxRepo = postgresRepo.NewNullOutboxRepository()
	}

	// Use cases
	balanceUC := usecase.NewBalanceUseCase(txManager, accountRepo, reservationRepo, outboxRepo, idGen, m)
	ledgerUC := usecase.NewLedgerUseCase(txManager, transactionRepo, outboxRepo, idGen, m)

	// The saga talks to the balance and ledger services through
	// clients that carry the gRPC status-code contract, so swapping in
	// network clients later does not change orchestrator behavior.
	balanceClient := client.NewBalanceClient(balanceUC, client.DefaultCallTimeout)
	ledgerClient := client.NewLedgerClient(ledgerUC, client.DefaultCallTimeout)

	paymentUC := usecase.NewPaymentUseCase(txManager, paymentRepo, outboxRepo, balanceClient, ledgerClient, idGen, m, usecase.SagaConfig{
		ReservationTTL:       cfg.ReservationTTL,
		MaxRetries:           cfg.SagaMaxRetries,
		RetryInitialInterval: cfg.SagaInitialInterval,
		RetryMaxInterval:     cfg.SagaMaxInterval,
		RetryMaxElapsedTime:  cfg.SagaMaxElapsedTime,
	})
	reconciliationUC := usecase.NewReconciliationUseCase(paymentRepo, balanceClient, ledgerClient)

	// Background workers
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	if cfg.OutboxEnabled {
		ep := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: outboxRepo,
			Publisher:  newPublisher(cfg, redisClient),
			Logger:     logger.NewWorker(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, "outbox"),
			Metrics:    m,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxPollInterval,
		})
		go ep.Start(workerCtx)
	}

	sw := sweeper.New(sweeper.Config{
		Balance:  balanceUC,
		Logger:   logger.NewWorker(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, "sweeper"),
		Interval: cfg.SweepInterval,
	})
	go sw.Start(workerCtx)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				rateLimiter.Reset()
			}
		}
	}()

	// HTTP layer
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		PaymentHandler:        handler.NewPaymentHandler(paymentUC),
		LoggingMiddleware:     middleware.NewLoggingMiddleware(log.Logger),
		AccountHandler:        handler.NewAccountHandler(balanceUC, ledgerUC),
		TransactionHandler:    handler.NewTransactionHandler(ledgerUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC),
		HealthHandler:         handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:      idempotencyStore,
		IdempotencyTTL:        cfg.IdempotencyTTL,
		RateLimiter:           rateLimiter,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// newPublisher picks the outbox sink. Unknown values fall back to the
// log publisher so a misconfigured deployment stays observable.
func newPublisher(cfg *config.Config, redisClient *goredis.Client) eventpublisher.Publisher {
	if cfg.OutboxPublisher == "redis" {
		return eventpublisher.NewRedisStreamPublisher(redisClient)
	}
	return eventpublisher.NewLogPublisher(nil)
}
