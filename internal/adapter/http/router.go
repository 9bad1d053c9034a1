package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iho/payflow/internal/adapter/http/handler"
	"github.com/iho/payflow/internal/adapter/http/middleware"
	"github.com/iho/payflow/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	PaymentHandler        *handler.PaymentHandler
	LoggingMiddleware     *middleware.LoggingMiddleware
	AccountHandler        *handler.AccountHandler
	TransactionHandler    *handler.TransactionHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler
	IdempotencyStore      usecase.IdempotencyStore
	IdempotencyTTL        time.Duration
	RateLimiter           *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.LoggingMiddleware != nil {
		r.Use(cfg.LoggingMiddleware.Wrap)
	} else {
		r.Use(chimiddleware.Logger)
	}
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	// Health and observability endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Payments
		r.Route("/payments", func(r chi.Router) {
			r.Post("/", cfg.PaymentHandler.Create)
			r.Get("/{id}", cfg.PaymentHandler.Get)
			r.Post("/{id}/cancel", cfg.PaymentHandler.Cancel)
		})

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/{id}/balance", cfg.AccountHandler.GetBalance)
			r.Get("/{id}/transactions", cfg.AccountHandler.ListTransactions)
		})

		// Transactions
		r.Get("/transactions/{id}", cfg.TransactionHandler.Get)

		// Reconciliation
		r.Get("/reconciliation", cfg.ReconciliationHandler.List)
	})

	return r
}
