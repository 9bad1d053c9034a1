package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds the actual balance for one account. The available
// balance is derived: actual balance minus the sum of pending
// reservations, and is never stored.
type Account struct {
	ID        string
	Name      string
	Currency  string
	Balance   decimal.Decimal
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AvailableBalance returns the balance usable for new reservations
// given the current sum of pending holds.
func (a *Account) AvailableBalance(pendingHolds decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(pendingHolds)
}

// ValidateReserve checks whether amount can be held on top of the
// existing pending holds without overdrawing the account.
func (a *Account) ValidateReserve(amount, pendingHolds decimal.Decimal) error {
	available := a.AvailableBalance(pendingHolds)
	if amount.GreaterThan(available) {
		return &InsufficientBalanceError{Requested: amount, Available: available}
	}
	return nil
}
