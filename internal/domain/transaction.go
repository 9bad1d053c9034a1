package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

type TransactionType string

const (
	TransactionTypePayment  TransactionType = "payment"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Transaction is an immutable ledger record of one value movement.
// The money fields (accounts, amount, currency) are write-once; only
// status, failure reason and completion time ever change.
type Transaction struct {
	ID                   string
	ReferenceNumber      string
	SourceAccountID      string
	DestinationAccountID string
	Amount               decimal.Decimal
	Currency             string
	Type                 TransactionType
	Status               TransactionStatus
	PaymentID            *string
	ReservationID        *string
	IdempotencyKey       string
	Description          string
	FailureReason        *string
	CreatedAt            time.Time
	CompletedAt          *time.Time
}

// Validate checks the write-once fields before the record is created.
func (t *Transaction) Validate() error {
	if t.SourceAccountID == "" || t.DestinationAccountID == "" {
		return ErrAccountNotFound
	}
	if t.SourceAccountID == t.DestinationAccountID {
		return ErrSameAccount
	}
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}

// IsTerminal reports whether the transaction reached a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status != TransactionStatusPending
}

// CanComplete returns nil when the transaction may be marked completed.
func (t *Transaction) CanComplete() error {
	if t.Status != TransactionStatusPending {
		return &InvalidStateError{Entity: "transaction", Current: string(t.Status), Attempted: "completed"}
	}
	return nil
}

// CanFail returns nil when the transaction may be marked failed.
// A completed transaction can never be failed afterwards.
func (t *Transaction) CanFail() error {
	if t.Status != TransactionStatusPending {
		return &InvalidStateError{Entity: "transaction", Current: string(t.Status), Attempted: "failed"}
	}
	return nil
}
