package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestReservation_Validate(t *testing.T) {
	tests := []struct {
		name    string
		amount  decimal.Decimal
		wantErr error
	}{
		{"positive amount", decimal.NewFromInt(100), nil},
		{"zero amount", decimal.Zero, ErrInvalidAmount},
		{"negative amount", decimal.NewFromInt(-5), ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Reservation{AccountID: "acc-1", Amount: tt.amount}
			if err := r.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReservation_TerminalStatesAreClosed(t *testing.T) {
	terminal := []ReservationStatus{
		ReservationStatusCommitted,
		ReservationStatusReleased,
		ReservationStatusExpired,
	}

	for _, status := range terminal {
		r := &Reservation{ID: "res-1", Status: status}

		if !r.IsTerminal() {
			t.Errorf("status %q should be terminal", status)
		}
		if err := r.CanCommit(); !errors.Is(err, ErrInvalidState) {
			t.Errorf("CanCommit() from %q = %v, want ErrInvalidState", status, err)
		}
		if err := r.CanRelease(); !errors.Is(err, ErrInvalidState) {
			t.Errorf("CanRelease() from %q = %v, want ErrInvalidState", status, err)
		}
	}
}

func TestReservation_PendingTransitions(t *testing.T) {
	r := &Reservation{ID: "res-1", Status: ReservationStatusPending}

	if r.IsTerminal() {
		t.Error("pending reservation should not be terminal")
	}
	if err := r.CanCommit(); err != nil {
		t.Errorf("CanCommit() from pending = %v, want nil", err)
	}
	if err := r.CanRelease(); err != nil {
		t.Errorf("CanRelease() from pending = %v, want nil", err)
	}
}

func TestReservation_IsExpired(t *testing.T) {
	now := time.Now().UTC()
	r := &Reservation{ExpiresAt: now.Add(time.Second)}

	if r.IsExpired(now) {
		t.Error("reservation should not be expired before its TTL")
	}
	if !r.IsExpired(now.Add(2 * time.Second)) {
		t.Error("reservation should be expired after its TTL")
	}
}

func TestInvalidStateError_Message(t *testing.T) {
	err := &InvalidStateError{Entity: "reservation", Current: "committed", Attempted: "released"}

	want := `reservation in state "committed" cannot be released`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
