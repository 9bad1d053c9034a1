package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/payflow/internal/domain"
	"github.com/iho/payflow/internal/infrastructure/metrics"
)

// LedgerUseCase owns the immutable transaction log:
// pending -> completed | failed, both terminal.
type LedgerUseCase struct {
	txManager       TransactionManager
	transactionRepo TransactionRepository
	outboxRepo      OutboxRepository
	idGen           IDGenerator
	metrics         *metrics.Metrics
}

func NewLedgerUseCase(
	txManager TransactionManager,
	transactionRepo TransactionRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:       txManager,
		transactionRepo: transactionRepo,
		outboxRepo:      outboxRepo,
		idGen:           idGen,
		metrics:         metrics,
	}
}

// CreateTransaction inserts a new pending ledger record. It is
// idempotent by key: when a record with the same key already exists it
// is returned as-is regardless of its current status, with no write.
func (uc *LedgerUseCase) CreateTransaction(ctx context.Context, input CreateTransactionRequest) (*domain.Transaction, error) {
	if err := domain.ValidateIdempotencyKey(input.IdempotencyKey); err != nil {
		return nil, err
	}
	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	existing, err := uc.transactionRepo.GetByIdempotencyKey(ctx, input.IdempotencyKey)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	transaction := &domain.Transaction{
		ID:                   uc.idGen.Generate(),
		SourceAccountID:      input.SourceAccountID,
		DestinationAccountID: input.DestinationAccountID,
		Amount:               input.Amount,
		Currency:             input.Currency,
		Type:                 input.Type,
		Status:               domain.TransactionStatusPending,
		IdempotencyKey:       input.IdempotencyKey,
		Description:          input.Description,
		CreatedAt:            now,
	}
	transaction.ReferenceNumber = ReferenceNumberPrefix + uc.idGen.Generate()

	if input.PaymentID != "" {
		paymentID := input.PaymentID
		transaction.PaymentID = &paymentID
	}
	if input.ReservationID != "" {
		reservationID := input.ReservationID
		transaction.ReservationID = &reservationID
	}

	if err := transaction.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.transactionRepo.Create(txCtx, tx, transaction); err != nil {
		if errors.Is(err, domain.ErrDuplicateIdempotency) {
			// First writer wins.
			_ = tx.Rollback(txCtx)
			return uc.transactionRepo.GetByIdempotencyKey(ctx, input.IdempotencyKey)
		}
		return nil, err
	}

	if err := uc.emitTransactionEvent(txCtx, tx, domain.EventTypeTransactionCreated, transaction, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsCreated.Inc()
	}

	return transaction, nil
}

// CompleteTransaction marks a pending transaction completed and stamps
// its completion time.
func (uc *LedgerUseCase) CompleteTransaction(ctx context.Context, transactionID string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	transaction, err := uc.transactionRepo.GetByIDForUpdate(txCtx, tx, transactionID)
	if err != nil {
		return err
	}

	if err := transaction.CanComplete(); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := uc.transactionRepo.MarkCompleted(txCtx, tx, transactionID, now); err != nil {
		return err
	}

	transaction.Status = domain.TransactionStatusCompleted
	transaction.CompletedAt = &now

	if err := uc.emitTransactionEvent(txCtx, tx, domain.EventTypeTransactionCompleted, transaction, now); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsCompleted.Inc()
	}

	return nil
}

// FailTransaction marks a pending transaction failed with a reason.
// A completed record can never be failed afterwards.
func (uc *LedgerUseCase) FailTransaction(ctx context.Context, transactionID, reason string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	transaction, err := uc.transactionRepo.GetByIDForUpdate(txCtx, tx, transactionID)
	if err != nil {
		return err
	}

	if err := transaction.CanFail(); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := uc.transactionRepo.MarkFailed(txCtx, tx, transactionID, reason); err != nil {
		return err
	}

	transaction.Status = domain.TransactionStatusFailed
	transaction.FailureReason = &reason

	if err := uc.emitTransactionEvent(txCtx, tx, domain.EventTypeTransactionFailed, transaction, now); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsFailed.Inc()
	}

	return nil
}

// GetTransaction retrieves a transaction by ID.
func (uc *LedgerUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.transactionRepo.GetByID(ctx, id)
}

// ListTransactionsByAccountInput represents input for listing
// transactions touching an account.
type ListTransactionsByAccountInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListTransactionsByAccount retrieves transactions for a given account.
func (uc *LedgerUseCase) ListTransactionsByAccount(ctx context.Context, input ListTransactionsByAccountInput) ([]*domain.Transaction, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.transactionRepo.ListByAccount(ctx, input.AccountID, limit, offset)
}

func (uc *LedgerUseCase) emitTransactionEvent(ctx context.Context, tx Transaction, eventType string, transaction *domain.Transaction, at time.Time) error {
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   transaction.ID,
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     eventType,
		SchemaVersion: domain.EventSchemaVersion,
		Payload:       domain.TransactionEventPayload(transaction),
		CreatedAt:     at,
	})
}
