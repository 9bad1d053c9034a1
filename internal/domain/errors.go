package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")

	// Reservation errors
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrInsufficientBalance  = errors.New("insufficient available balance")
	ErrDuplicateIdempotency = errors.New("idempotency key already exists")

	// Transaction errors
	ErrTransactionNotFound = errors.New("transaction not found")

	// Payment errors
	ErrPaymentNotFound = errors.New("payment not found")

	// State machine errors
	ErrInvalidState = errors.New("invalid state transition")

	// Validation errors
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrSameAccount      = errors.New("source and destination accounts must differ")
	ErrCurrencyMismatch = errors.New("currency does not match account currency")
)

// InsufficientBalanceError reports how much was requested against what
// was actually available at the time of the check.
type InsufficientBalanceError struct {
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient available balance: requested %s, available %s",
		e.Requested.String(), e.Available.String())
}

// Is makes errors.Is(err, ErrInsufficientBalance) work on wrapped values.
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// InvalidStateError reports a rejected state machine transition.
type InvalidStateError struct {
	Entity    string // "reservation", "transaction", "payment"
	Current   string
	Attempted string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s in state %q cannot be %s", e.Entity, e.Current, e.Attempted)
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}
