package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/payflow/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// ReservationRepository defines data access for balance reservations.
// Create must enforce a unique index on the idempotency key and return
// domain.ErrDuplicateIdempotency when it is violated.
type ReservationRepository interface {
	Create(ctx context.Context, tx Transaction, reservation *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Reservation, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Reservation, error)
	MarkCommitted(ctx context.Context, tx Transaction, id, transactionID string, committedAt time.Time) error
	MarkReleased(ctx context.Context, tx Transaction, id string, status domain.ReservationStatus, reason string, releasedAt time.Time) error
	SumPendingByAccount(ctx context.Context, tx Transaction, accountID string) (decimal.Decimal, error)
	ListExpiredForUpdate(ctx context.Context, tx Transaction, before time.Time, limit int) ([]*domain.Reservation, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Reservation, error)
}

// TransactionRepository defines data access for ledger transactions.
// Create must enforce a unique index on the idempotency key and return
// domain.ErrDuplicateIdempotency when it is violated.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Transaction, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)
	MarkCompleted(ctx context.Context, tx Transaction, id string, completedAt time.Time) error
	MarkFailed(ctx context.Context, tx Transaction, id, reason string) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
}

// PaymentRepository defines data access for payments.
type PaymentRepository interface {
	Create(ctx context.Context, tx Transaction, payment *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Payment, error)
	Update(ctx context.Context, tx Transaction, payment *domain.Payment) error
	ListByStatus(ctx context.Context, status domain.PaymentStatus, limit, offset int) ([]*domain.Payment, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyInFlight is the placeholder stored for a claimed key whose
// request is still executing. Readers seeing it must not run the
// request again.
const IdempotencyInFlight = "processing"

// IdempotencyStore handles idempotency key storage for the HTTP layer.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Delete releases a key so the request may be retried.
	Delete(ctx context.Context, key string) error
}

// ReserveRequest is the remote-call input for placing a hold.
type ReserveRequest struct {
	AccountID      string
	Amount         decimal.Decimal
	Currency       string
	IdempotencyKey string
	TTL            time.Duration
}

// CreateTransactionRequest is the remote-call input for a ledger record.
type CreateTransactionRequest struct {
	SourceAccountID      string
	DestinationAccountID string
	Amount               decimal.Decimal
	Currency             string
	Type                 domain.TransactionType
	PaymentID            string
	ReservationID        string
	Description          string
	IdempotencyKey       string
}

// BalanceClient is the orchestrator's view of the balance service.
// Implementations signal errors as gRPC status codes and carry a
// per-call deadline.
type BalanceClient interface {
	Reserve(ctx context.Context, req ReserveRequest) (reservationID string, err error)
	Commit(ctx context.Context, reservationID, transactionID string) error
	Release(ctx context.Context, reservationID, reason string) error
	GetReservation(ctx context.Context, reservationID string) (*domain.Reservation, error)
	GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// LedgerClient is the orchestrator's view of the ledger service.
type LedgerClient interface {
	CreateTransaction(ctx context.Context, req CreateTransactionRequest) (transactionID, referenceNumber string, err error)
	CompleteTransaction(ctx context.Context, transactionID string) error
	FailTransaction(ctx context.Context, transactionID, reason string) error
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)
}
