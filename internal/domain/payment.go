package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCancelled  PaymentStatus = "cancelled"

	// PaymentStatusNeedsReconciliation marks the post-commit anomaly:
	// the balance was deducted but the ledger record could not be
	// completed. The payment stays here until an operator resolves it.
	PaymentStatusNeedsReconciliation PaymentStatus = "needs_reconciliation"
)

// paymentTransitions defines the allowed payment state machine edges.
// The orchestrator exclusively owns these transitions.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:    {PaymentStatusProcessing, PaymentStatusFailed, PaymentStatusCancelled},
	PaymentStatusProcessing: {PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusNeedsReconciliation},
}

// Payment is the orchestrator's view of one client-initiated transfer.
// Reservation and Transaction are owned by their services and only
// referenced by id from here.
type Payment struct {
	ID                   string
	SourceAccountID      string
	DestinationAccountID string
	Amount               decimal.Decimal
	Currency             string
	Status               PaymentStatus
	ReservationID        *string
	TransactionID        *string
	IdempotencyKey       string
	Description          string
	FailureReason        *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Validate checks the payment request fields.
func (p *Payment) Validate() error {
	if p.SourceAccountID == p.DestinationAccountID {
		return ErrSameAccount
	}
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}

// CanTransitionTo returns nil when the payment may move to target.
func (p *Payment) CanTransitionTo(target PaymentStatus) error {
	for _, allowed := range paymentTransitions[p.Status] {
		if allowed == target {
			return nil
		}
	}
	return &InvalidStateError{Entity: "payment", Current: string(p.Status), Attempted: string(target)}
}

// IsTerminal reports whether the payment reached a final state.
// needs_reconciliation is terminal for the saga but remains open for
// operators.
func (p *Payment) IsTerminal() bool {
	switch p.Status {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusNeedsReconciliation:
		return true
	}
	return false
}
