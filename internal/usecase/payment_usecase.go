package usecase

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/iho/payflow/internal/domain"
	"github.com/iho/payflow/internal/infrastructure/metrics"
)

// SagaConfig tunes the orchestrator's remote-call retry behavior.
type SagaConfig struct {
	ReservationTTL       time.Duration
	MaxRetries           int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMaxElapsedTime  time.Duration
}

func (c SagaConfig) withDefaults() SagaConfig {
	if c.ReservationTTL <= 0 {
		c.ReservationTTL = DefaultReservationTTL
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryInitialInterval <= 0 {
		c.RetryInitialInterval = 100 * time.Millisecond
	}
	if c.RetryMaxInterval <= 0 {
		c.RetryMaxInterval = 2 * time.Second
	}
	if c.RetryMaxElapsedTime <= 0 {
		c.RetryMaxElapsedTime = 15 * time.Second
	}
	return c
}

// PaymentUseCase drives the payment saga:
// reserve -> record transaction -> commit reservation -> complete.
// Any step failure runs the compensation path (release + fail). Each
// payment's flow is sequential; payments run concurrently and only
// contend inside the balance service, per account.
type PaymentUseCase struct {
	txManager   TransactionManager
	paymentRepo PaymentRepository
	outboxRepo  OutboxRepository
	balance     BalanceClient
	ledger      LedgerClient
	idGen       IDGenerator
	metrics     *metrics.Metrics
	cfg         SagaConfig
}

func NewPaymentUseCase(
	txManager TransactionManager,
	paymentRepo PaymentRepository,
	outboxRepo OutboxRepository,
	balance BalanceClient,
	ledger LedgerClient,
	idGen IDGenerator,
	metrics *metrics.Metrics,
	cfg SagaConfig,
) *PaymentUseCase {
	return &PaymentUseCase{
		txManager:   txManager,
		paymentRepo: paymentRepo,
		outboxRepo:  outboxRepo,
		balance:     balance,
		ledger:      ledger,
		idGen:       idGen,
		metrics:     metrics,
		cfg:         cfg.withDefaults(),
	}
}

// CreatePaymentInput represents a client-initiated transfer request.
type CreatePaymentInput struct {
	SourceAccountID      string
	DestinationAccountID string
	Amount               decimal.Decimal
	Currency             string
	Description          string
}

// CreatePayment records a new pending payment. The idempotency key for
// every downstream call is derived from the payment id, so a retried
// saga reuses the same key.
func (uc *PaymentUseCase) CreatePayment(ctx context.Context, input CreatePaymentInput) (*domain.Payment, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}
	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:                   uc.idGen.Generate(),
		SourceAccountID:      input.SourceAccountID,
		DestinationAccountID: input.DestinationAccountID,
		Amount:               input.Amount,
		Currency:             input.Currency,
		Status:               domain.PaymentStatusPending,
		Description:          input.Description,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	payment.IdempotencyKey = "payment-" + payment.ID

	if err := payment.Validate(); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.paymentRepo.Create(txCtx, tx, payment); err != nil {
		return nil, err
	}

	if err := uc.emitPaymentEvent(txCtx, tx, domain.EventTypePaymentInitiated, payment, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PaymentsCreated.Inc()
	}

	return payment, nil
}

// ProcessPayment runs the saga for one payment to a terminal state.
// Business failures end up on the payment itself (status failed with a
// reason); the returned error is reserved for infrastructure problems
// that prevented the saga from recording an outcome at all.
func (uc *PaymentUseCase) ProcessPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	start := time.Now()

	payment, err := uc.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if payment.IsTerminal() {
		return payment, nil
	}

	if payment.Status == domain.PaymentStatusPending {
		if err := uc.transition(ctx, payment, domain.PaymentStatusProcessing, domain.EventTypePaymentProcessing, nil); err != nil {
			return nil, err
		}
	}

	// Step 1: reserve funds. Nothing to compensate on failure.
	reservationID, err := uc.reserveFunds(ctx, payment)
	if err != nil {
		return uc.failPayment(ctx, payment, reasonOf(err))
	}
	payment.ReservationID = &reservationID

	// Step 2: record the ledger transaction. On failure the
	// reservation must be released.
	transactionID, err := uc.recordTransaction(ctx, payment)
	if err != nil {
		uc.compensateRelease(ctx, payment, "transaction creation failed")
		return uc.failPayment(ctx, payment, reasonOf(err))
	}
	payment.TransactionID = &transactionID

	// Step 3: commit the reservation. On failure (say the hold expired
	// while the ledger call was retrying) the ledger record is failed;
	// the reservation itself is already non-committed and needs no
	// further action.
	if err := uc.commitReservation(ctx, payment); err != nil {
		uc.compensateFailTransaction(ctx, payment, "reservation commit failed: "+reasonOf(err))
		return uc.failPayment(ctx, payment, reasonOf(err))
	}

	// Step 4: complete the ledger record. Past this point the money has
	// moved; a failure here cannot be compensated automatically because
	// reversing a commit would be a new value movement, not a rollback.
	if err := uc.completeTransaction(ctx, payment); err != nil {
		return uc.markNeedsReconciliation(ctx, payment, err)
	}

	if err := uc.transition(ctx, payment, domain.PaymentStatusCompleted, domain.EventTypePaymentCompleted, nil); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PaymentsProcessed.WithLabelValues(string(payment.Status)).Inc()
		uc.metrics.PaymentDuration.Observe(time.Since(start).Seconds())
	}

	return payment, nil
}

// CancelPayment cancels a payment that has not started processing.
// Once the saga is running, cancellation happens through the same
// release-and-fail compensation path as any other failure, never as a
// separate code path, so cancelling here is rejected.
func (uc *PaymentUseCase) CancelPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	payment, err := uc.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if err := uc.transition(ctx, payment, domain.PaymentStatusCancelled, domain.EventTypePaymentCancelled, nil); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PaymentsProcessed.WithLabelValues(string(domain.PaymentStatusCancelled)).Inc()
	}

	return payment, nil
}

// GetPayment retrieves a payment by ID.
func (uc *PaymentUseCase) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	return uc.paymentRepo.GetByID(ctx, id)
}

func (uc *PaymentUseCase) reserveFunds(ctx context.Context, payment *domain.Payment) (string, error) {
	var reservationID string

	err := uc.callRemote(ctx, "reserve", func(callCtx context.Context) error {
		id, err := uc.balance.Reserve(callCtx, ReserveRequest{
			AccountID:      payment.SourceAccountID,
			Amount:         payment.Amount,
			Currency:       payment.Currency,
			IdempotencyKey: payment.IdempotencyKey,
			TTL:            uc.cfg.ReservationTTL,
		})
		if err != nil {
			return err
		}
		reservationID = id
		return nil
	})

	return reservationID, err
}

func (uc *PaymentUseCase) recordTransaction(ctx context.Context, payment *domain.Payment) (string, error) {
	var transactionID string

	err := uc.callRemote(ctx, "create_transaction", func(callCtx context.Context) error {
		id, _, err := uc.ledger.CreateTransaction(callCtx, CreateTransactionRequest{
			SourceAccountID:      payment.SourceAccountID,
			DestinationAccountID: payment.DestinationAccountID,
			Amount:               payment.Amount,
			Currency:             payment.Currency,
			Type:                 domain.TransactionTypePayment,
			PaymentID:            payment.ID,
			ReservationID:        *payment.ReservationID,
			Description:          payment.Description,
			IdempotencyKey:       payment.IdempotencyKey,
		})
		if err != nil {
			return err
		}
		transactionID = id
		return nil
	})

	return transactionID, err
}

// commitReservation commits the hold. Commit is guarded by a state
// check server-side, so after an ambiguous outcome (timeout) or a
// state rejection the saga queries the reservation instead of blindly
// retrying: finding it committed means an earlier attempt won and the
// call is a success no-op.
func (uc *PaymentUseCase) commitReservation(ctx context.Context, payment *domain.Payment) error {
	err := uc.callRemote(ctx, "commit", func(callCtx context.Context) error {
		return uc.balance.Commit(callCtx, *payment.ReservationID, *payment.TransactionID)
	})
	if err == nil {
		return nil
	}

	switch status.Code(err) {
	case codes.FailedPrecondition, codes.DeadlineExceeded, codes.Unavailable:
		reservation, qerr := uc.balance.GetReservation(ctx, *payment.ReservationID)
		if qerr == nil && reservation.Status == domain.ReservationStatusCommitted {
			return nil
		}
	}

	return err
}

// completeTransaction marks the ledger record complete, treating an
// already-completed record (from a prior ambiguous attempt) as success.
func (uc *PaymentUseCase) completeTransaction(ctx context.Context, payment *domain.Payment) error {
	err := uc.callRemote(ctx, "complete_transaction", func(callCtx context.Context) error {
		return uc.ledger.CompleteTransaction(callCtx, *payment.TransactionID)
	})
	if err == nil {
		return nil
	}

	transaction, qerr := uc.ledger.GetTransaction(ctx, *payment.TransactionID)
	if qerr == nil && transaction.Status == domain.TransactionStatusCompleted {
		return nil
	}

	return err
}

func (uc *PaymentUseCase) compensateRelease(ctx context.Context, payment *domain.Payment, reason string) {
	if uc.metrics != nil {
		uc.metrics.SagaCompensations.WithLabelValues("release").Inc()
	}

	err := uc.callRemote(ctx, "release", func(callCtx context.Context) error {
		return uc.balance.Release(callCtx, *payment.ReservationID, reason)
	})
	if err == nil {
		return
	}

	if status.Code(err) == codes.FailedPrecondition {
		// Already released or expired; nothing left to undo.
		return
	}

	// The expiry sweep frees abandoned holds, so an unreleased
	// reservation heals itself after its TTL.
	log.Error().Err(err).
		Str("payment_id", payment.ID).
		Str("reservation_id", *payment.ReservationID).
		Msg("failed to release reservation, expiry sweep will reclaim it")
}

func (uc *PaymentUseCase) compensateFailTransaction(ctx context.Context, payment *domain.Payment, reason string) {
	if uc.metrics != nil {
		uc.metrics.SagaCompensations.WithLabelValues("fail_transaction").Inc()
	}

	err := uc.callRemote(ctx, "fail_transaction", func(callCtx context.Context) error {
		return uc.ledger.FailTransaction(callCtx, *payment.TransactionID, reason)
	})
	if err != nil && status.Code(err) != codes.FailedPrecondition {
		log.Error().Err(err).
			Str("payment_id", payment.ID).
			Str("transaction_id", *payment.TransactionID).
			Msg("failed to mark ledger transaction failed")
	}
}

func (uc *PaymentUseCase) failPayment(ctx context.Context, payment *domain.Payment, reason string) (*domain.Payment, error) {
	if err := uc.transition(ctx, payment, domain.PaymentStatusFailed, domain.EventTypePaymentFailed, &reason); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PaymentsProcessed.WithLabelValues(string(domain.PaymentStatusFailed)).Inc()
	}

	return payment, nil
}

// markNeedsReconciliation records the post-commit anomaly: the balance
// was deducted but the ledger record could not be completed. The
// payment must not be reported completed or failed; it stays in an
// explicit marker state until an operator resolves it.
func (uc *PaymentUseCase) markNeedsReconciliation(ctx context.Context, payment *domain.Payment, cause error) (*domain.Payment, error) {
	reason := "commit succeeded but transaction completion failed: " + reasonOf(cause)

	log.Error().
		Str("payment_id", payment.ID).
		Str("reservation_id", derefOr(payment.ReservationID, "")).
		Str("transaction_id", derefOr(payment.TransactionID, "")).
		Str("cause", reasonOf(cause)).
		Msg("payment requires manual reconciliation")

	if uc.metrics != nil {
		uc.metrics.ReconciliationAnomalies.Inc()
	}

	if err := uc.transition(ctx, payment, domain.PaymentStatusNeedsReconciliation, domain.EventTypePaymentReconciliationRequired, &reason); err != nil {
		return nil, err
	}

	return payment, nil
}

// transition moves the payment to target under a row lock and writes
// the matching lifecycle event in the same database transaction.
func (uc *PaymentUseCase) transition(ctx context.Context, payment *domain.Payment, target domain.PaymentStatus, eventType string, reason *string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	locked, err := uc.paymentRepo.GetByIDForUpdate(txCtx, tx, payment.ID)
	if err != nil {
		return err
	}

	if err := locked.CanTransitionTo(target); err != nil {
		return err
	}

	now := time.Now().UTC()
	locked.Status = target
	locked.ReservationID = payment.ReservationID
	locked.TransactionID = payment.TransactionID
	locked.FailureReason = reason
	locked.UpdatedAt = now

	if err := uc.paymentRepo.Update(txCtx, tx, locked); err != nil {
		return err
	}

	if err := uc.emitPaymentEvent(txCtx, tx, eventType, locked, now); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	*payment = *locked

	return nil
}

// callRemote runs one remote call with exponential backoff, retrying
// only transient transport errors. State-machine and business errors
// are final and surface immediately.
func (uc *PaymentUseCase) callRemote(ctx context.Context, step string, fn func(context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = uc.cfg.RetryInitialInterval
	b.MaxInterval = uc.cfg.RetryMaxInterval
	b.MaxElapsedTime = uc.cfg.RetryMaxElapsedTime

	retryCount := 0

	return backoff.Retry(func() error {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		if !isTransient(err) {
			return backoff.Permanent(err)
		}

		retryCount++
		if retryCount > uc.cfg.MaxRetries {
			return backoff.Permanent(err)
		}

		if uc.metrics != nil {
			uc.metrics.SagaRetries.WithLabelValues(step).Inc()
		}

		log.Warn().Err(err).
			Str("step", step).
			Int("retry", retryCount).
			Msg("transient error on saga step, retrying")

		return err
	}, backoff.WithContext(b, ctx))
}

// isTransient reports whether the error is a retryable infrastructure
// failure rather than a definitive outcome.
func isTransient(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return true
	}
	return false
}

func reasonOf(err error) string {
	if err == nil {
		return ""
	}
	return status.Convert(err).Message()
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func (uc *PaymentUseCase) emitPaymentEvent(ctx context.Context, tx Transaction, eventType string, payment *domain.Payment, at time.Time) error {
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   payment.ID,
		AggregateType: domain.AggregateTypePayment,
		EventType:     eventType,
		SchemaVersion: domain.EventSchemaVersion,
		Payload:       domain.PaymentEventPayload(payment),
		CreatedAt:     at,
	})
}
