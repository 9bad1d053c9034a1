package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultReservationTTL is how long a hold stays pending before the
	// expiry sweep frees it
	DefaultReservationTTL = 15 * time.Minute

	// SweepBatchSize bounds how many expired reservations one sweep
	// transaction touches
	SweepBatchSize = 100

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// ReferenceNumberPrefix prefixes human-readable ledger references
	ReferenceNumberPrefix = "TXN-"
)
