package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Payment saga metrics
	PaymentsCreated         prometheus.Counter
	PaymentsProcessed       *prometheus.CounterVec
	PaymentDuration         prometheus.Histogram
	SagaRetries             *prometheus.CounterVec
	SagaCompensations       *prometheus.CounterVec
	ReconciliationAnomalies prometheus.Counter

	// Reservation metrics
	ReservationsCreated           prometheus.Counter
	ReservationsCommitted         prometheus.Counter
	ReservationsReleased          prometheus.Counter
	ReservationsExpired           prometheus.Counter
	InsufficientBalanceRejections prometheus.Counter

	// Ledger metrics
	TransactionsCreated   prometheus.Counter
	TransactionsCompleted prometheus.Counter
	TransactionsFailed    prometheus.Counter

	// Outbox metrics
	EventsPublished     prometheus.Counter
	EventPublishErrors  prometheus.Counter
	OutboxBacklogEvents prometheus.Gauge
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Payment saga metrics
		PaymentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payflow_payments_created_total",
			Help: "Total number of payments created",
		}),
		PaymentsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payflow_payments_processed_total",
				Help: "Total number of payments reaching a terminal status",
			},
			[]string{"status"},
		),
		PaymentDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "payflow_payment_duration_seconds",
			Help:    "Duration of the payment saga from start to terminal state",
			Buckets: prometheus.DefBuckets,
		}),
		SagaRetries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payflow_saga_retries_total",
				Help: "Total transient-error retries by saga step",
			},
			[]string{"step"},
		),
		SagaCompensations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payflow_saga_compensations_total",
				Help: "Total compensation actions by step",
			},
			[]string{"step"},
		),
		ReconciliationAnomalies: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payflow_reconciliation_anomalies_total",
			Help: "Total payments parked for manual reconciliation",
		}),

		// Reservation metrics
		ReservationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payflow_reservations_created_total",
			Help: "Total number of balance reservations created",
		}),
		ReservationsCommitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payflow_reservations_committed_total",
			Help: "Total number of reservations committed",
		}),
		ReservationsReleased: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payflow_reservations_released_total",
			Help: "Total number of reservations released",
		}),
		ReservationsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payflow_reservations_expired_total",
			Help: "Total number of reservations expired by the sweep",
		}),
		InsufficientBalanceRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payflow_insufficient_balance_rejections_total",
			Help: "Total reservations rejected for insufficient available balance",
		}),

		// Ledger metrics
		TransactionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payflow_transactions_created_total",
			Help: "Total number of ledger transactions created",
		}),
		TransactionsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payflow_transactions_completed_total",
			Help: "Total number of ledger transactions completed",
		}),
		TransactionsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payflow_transactions_failed_total",
			Help: "Total number of ledger transactions failed",
		}),

		// Outbox metrics
		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payflow_outbox_events_published_total",
			Help: "Total outbox events published downstream",
		}),
		EventPublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payflow_outbox_publish_errors_total",
			Help: "Total outbox publish failures",
		}),
		OutboxBacklogEvents: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "payflow_outbox_backlog_events",
			Help: "Unpublished outbox events seen in the last poll",
		}),
	}
}
