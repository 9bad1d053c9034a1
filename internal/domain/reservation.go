package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusCommitted ReservationStatus = "committed"
	ReservationStatusReleased  ReservationStatus = "released"
	ReservationStatusExpired   ReservationStatus = "expired"
)

// ReleaseReasonExpired marks reservations released by the expiry sweep.
const ReleaseReasonExpired = "expired"

// Reservation is a hold against one account. A pending reservation
// reduces available balance without touching actual balance; commit
// deducts the actual balance, release and expiry free the hold.
type Reservation struct {
	ID             string
	AccountID      string
	Amount         decimal.Decimal
	Currency       string
	Status         ReservationStatus
	IdempotencyKey string
	TransactionID  *string
	ReleaseReason  *string
	ExpiresAt      time.Time
	CreatedAt      time.Time
	CommittedAt    *time.Time
	ReleasedAt     *time.Time
}

// Validate checks if the reservation is well-formed.
func (r *Reservation) Validate() error {
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}

// IsTerminal reports whether the reservation reached a final state.
// Terminal reservations are never re-opened.
func (r *Reservation) IsTerminal() bool {
	return r.Status != ReservationStatusPending
}

// CanCommit returns nil when the reservation may transition to committed.
func (r *Reservation) CanCommit() error {
	if r.Status != ReservationStatusPending {
		return &InvalidStateError{Entity: "reservation", Current: string(r.Status), Attempted: "committed"}
	}
	return nil
}

// CanRelease returns nil when the reservation may transition to
// released or expired. A committed reservation cannot be un-committed.
func (r *Reservation) CanRelease() error {
	if r.Status != ReservationStatusPending {
		return &InvalidStateError{Entity: "reservation", Current: string(r.Status), Attempted: "released"}
	}
	return nil
}

// IsExpired reports whether the reservation's TTL has passed.
func (r *Reservation) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
