package usecase

import (
	"context"
	"time"

	"github.com/iho/payflow/internal/domain"
)

// ReconciliationUseCase surfaces payments stuck in the post-commit
// anomaly (balance deducted, ledger record not completed). There is no
// automatic resolution: reversing a committed hold would be a new value
// movement, so these are handed to an operator with as much context as
// the system has.
type ReconciliationUseCase struct {
	paymentRepo PaymentRepository
	balance     BalanceClient
	ledger      LedgerClient
}

func NewReconciliationUseCase(
	paymentRepo PaymentRepository,
	balance BalanceClient,
	ledger LedgerClient,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		paymentRepo: paymentRepo,
		balance:     balance,
		ledger:      ledger,
	}
}

// ReconciliationEntry is one anomalous payment with the current state
// of its reservation and ledger transaction.
type ReconciliationEntry struct {
	Payment           *domain.Payment
	ReservationStatus domain.ReservationStatus
	TransactionStatus domain.TransactionStatus
	DetectedAt        time.Time
}

// ListAnomalies returns payments awaiting manual reconciliation.
func (uc *ReconciliationUseCase) ListAnomalies(ctx context.Context, limit, offset int) ([]*ReconciliationEntry, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	payments, err := uc.paymentRepo.ListByStatus(ctx, domain.PaymentStatusNeedsReconciliation, limit, offset)
	if err != nil {
		return nil, err
	}

	entries := make([]*ReconciliationEntry, 0, len(payments))
	for _, payment := range payments {
		entry := &ReconciliationEntry{
			Payment:    payment,
			DetectedAt: payment.UpdatedAt,
		}

		if payment.ReservationID != nil {
			if reservation, err := uc.balance.GetReservation(ctx, *payment.ReservationID); err == nil {
				entry.ReservationStatus = reservation.Status
			}
		}
		if payment.TransactionID != nil {
			if transaction, err := uc.ledger.GetTransaction(ctx, *payment.TransactionID); err == nil {
				entry.TransactionStatus = transaction.Status
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
