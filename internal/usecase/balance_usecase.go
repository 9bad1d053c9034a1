package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/payflow/internal/domain"
	"github.com/iho/payflow/internal/infrastructure/metrics"
)

// BalanceUseCase owns account balances and the reservation state
// machine: pending -> committed | released | expired, all terminal.
type BalanceUseCase struct {
	txManager       TransactionManager
	accountRepo     AccountRepository
	reservationRepo ReservationRepository
	outboxRepo      OutboxRepository
	idGen           IDGenerator
	metrics         *metrics.Metrics
}

func NewBalanceUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	reservationRepo ReservationRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *BalanceUseCase {
	return &BalanceUseCase{
		txManager:       txManager,
		accountRepo:     accountRepo,
		reservationRepo: reservationRepo,
		outboxRepo:      outboxRepo,
		idGen:           idGen,
		metrics:         metrics,
	}
}

// ReserveInput represents input for placing a hold on an account.
type ReserveInput struct {
	AccountID      string
	Amount         decimal.Decimal
	Currency       string
	IdempotencyKey string
	TTL            time.Duration
}

// Reserve places a hold on the account's available balance. It is
// idempotent by key: a repeated call returns the existing reservation
// unchanged. The availability check and the insert happen under a row
// lock on the account, so concurrent reservations on the same account
// serialize while independent accounts proceed in parallel.
func (uc *BalanceUseCase) Reserve(ctx context.Context, input ReserveInput) (*domain.Reservation, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}
	if err := domain.ValidateIdempotencyKey(input.IdempotencyKey); err != nil {
		return nil, err
	}

	// Fast path: the key has been seen before.
	existing, err := uc.reservationRepo.GetByIdempotencyKey(ctx, input.IdempotencyKey)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrReservationNotFound) {
		return nil, err
	}

	ttl := input.TTL
	if ttl <= 0 {
		ttl = DefaultReservationTTL
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// Lock the account row: this serializes the availability check
	// per account.
	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if account.Currency != input.Currency {
		return nil, domain.ErrCurrencyMismatch
	}

	pending, err := uc.reservationRepo.SumPendingByAccount(txCtx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if err := account.ValidateReserve(input.Amount, pending); err != nil {
		if uc.metrics != nil {
			uc.metrics.InsufficientBalanceRejections.Inc()
		}
		return nil, err
	}

	now := time.Now().UTC()
	reservation := &domain.Reservation{
		ID:             uc.idGen.Generate(),
		AccountID:      input.AccountID,
		Amount:         input.Amount,
		Currency:       input.Currency,
		Status:         domain.ReservationStatusPending,
		IdempotencyKey: input.IdempotencyKey,
		ExpiresAt:      now.Add(ttl),
		CreatedAt:      now,
	}

	if err := uc.reservationRepo.Create(txCtx, tx, reservation); err != nil {
		if errors.Is(err, domain.ErrDuplicateIdempotency) {
			// Lost the race against a concurrent request with the same
			// key: first writer wins, we read its row.
			_ = tx.Rollback(txCtx)
			return uc.reservationRepo.GetByIdempotencyKey(ctx, input.IdempotencyKey)
		}
		return nil, err
	}

	if err := uc.emitReservationEvent(txCtx, tx, domain.EventTypeReservationCreated, reservation, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ReservationsCreated.Inc()
	}

	return reservation, nil
}

// Commit deducts the reserved amount from the actual balance and
// finalizes the reservation, atomically in one database transaction.
// Only a pending reservation can be committed.
func (uc *BalanceUseCase) Commit(ctx context.Context, reservationID, transactionID string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	reservation, err := uc.reservationRepo.GetByIDForUpdate(txCtx, tx, reservationID)
	if err != nil {
		return err
	}

	if err := reservation.CanCommit(); err != nil {
		return err
	}

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, reservation.AccountID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	newBalance := account.Balance.Sub(reservation.Amount)

	if err := uc.accountRepo.UpdateBalance(txCtx, tx, account.ID, newBalance, now); err != nil {
		return err
	}

	if err := uc.reservationRepo.MarkCommitted(txCtx, tx, reservationID, transactionID, now); err != nil {
		return err
	}

	reservation.Status = domain.ReservationStatusCommitted
	reservation.TransactionID = &transactionID
	reservation.CommittedAt = &now

	if err := uc.emitReservationEvent(txCtx, tx, domain.EventTypeReservationCommitted, reservation, now); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.ReservationsCommitted.Inc()
	}

	return nil
}

// Release frees a pending hold without touching the actual balance.
// A committed reservation cannot be un-committed.
func (uc *BalanceUseCase) Release(ctx context.Context, reservationID, reason string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	reservation, err := uc.reservationRepo.GetByIDForUpdate(txCtx, tx, reservationID)
	if err != nil {
		return err
	}

	if err := reservation.CanRelease(); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := uc.reservationRepo.MarkReleased(txCtx, tx, reservationID, domain.ReservationStatusReleased, reason, now); err != nil {
		return err
	}

	reservation.Status = domain.ReservationStatusReleased
	reservation.ReleaseReason = &reason
	reservation.ReleasedAt = &now

	if err := uc.emitReservationEvent(txCtx, tx, domain.EventTypeReservationReleased, reservation, now); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.ReservationsReleased.Inc()
	}

	return nil
}

// SweepExpired transitions pending reservations past their TTL to
// expired, freeing the held amounts. The repository only returns rows
// still pending and locks them, so a sweep racing a Commit or Release
// on the same reservation cannot double-apply; a second sweep over the
// same set is a no-op.
func (uc *BalanceUseCase) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	count := 0

	for {
		swept, err := uc.sweepBatch(ctx, now)
		if err != nil {
			return count, err
		}

		count += swept
		if swept < SweepBatchSize {
			break
		}
	}

	if uc.metrics != nil && count > 0 {
		uc.metrics.ReservationsExpired.Add(float64(count))
	}

	return count, nil
}

func (uc *BalanceUseCase) sweepBatch(ctx context.Context, now time.Time) (int, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	expired, err := uc.reservationRepo.ListExpiredForUpdate(txCtx, tx, now, SweepBatchSize)
	if err != nil {
		return 0, err
	}

	if len(expired) == 0 {
		return 0, nil
	}

	sweptAt := time.Now().UTC()
	for _, reservation := range expired {
		if err := uc.reservationRepo.MarkReleased(txCtx, tx, reservation.ID, domain.ReservationStatusExpired, domain.ReleaseReasonExpired, sweptAt); err != nil {
			return 0, err
		}

		reservation.Status = domain.ReservationStatusExpired
		reason := domain.ReleaseReasonExpired
		reservation.ReleaseReason = &reason
		reservation.ReleasedAt = &sweptAt

		if err := uc.emitReservationEvent(txCtx, tx, domain.EventTypeReservationExpired, reservation, sweptAt); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return 0, err
	}

	return len(expired), nil
}

// GetAvailableBalance returns actual balance minus the sum of pending
// reservations.
func (uc *BalanceUseCase) GetAvailableBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	pending, err := uc.reservationRepo.SumPendingByAccount(ctx, nil, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	return account.AvailableBalance(pending), nil
}

// GetReservation retrieves a reservation by ID.
func (uc *BalanceUseCase) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	return uc.reservationRepo.GetByID(ctx, id)
}

// GetAccount retrieves an account by ID.
func (uc *BalanceUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

func (uc *BalanceUseCase) emitReservationEvent(ctx context.Context, tx Transaction, eventType string, reservation *domain.Reservation, at time.Time) error {
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   reservation.ID,
		AggregateType: domain.AggregateTypeReservation,
		EventType:     eventType,
		SchemaVersion: domain.EventSchemaVersion,
		Payload:       domain.ReservationEventPayload(reservation),
		CreatedAt:     at,
	})
}
