package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPayment_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    PaymentStatus
		to      PaymentStatus
		wantErr bool
	}{
		{"pending to processing", PaymentStatusPending, PaymentStatusProcessing, false},
		{"pending to cancelled", PaymentStatusPending, PaymentStatusCancelled, false},
		{"pending to failed", PaymentStatusPending, PaymentStatusFailed, false},
		{"pending to completed skips processing", PaymentStatusPending, PaymentStatusCompleted, true},
		{"processing to completed", PaymentStatusProcessing, PaymentStatusCompleted, false},
		{"processing to failed", PaymentStatusProcessing, PaymentStatusFailed, false},
		{"processing to needs_reconciliation", PaymentStatusProcessing, PaymentStatusNeedsReconciliation, false},
		{"processing to cancelled", PaymentStatusProcessing, PaymentStatusCancelled, true},
		{"completed is closed", PaymentStatusCompleted, PaymentStatusFailed, true},
		{"failed is closed", PaymentStatusFailed, PaymentStatusProcessing, true},
		{"cancelled is closed", PaymentStatusCancelled, PaymentStatusProcessing, true},
		{"needs_reconciliation is closed", PaymentStatusNeedsReconciliation, PaymentStatusCompleted, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Payment{ID: "pay-1", Status: tt.from}
			err := p.CanTransitionTo(tt.to)

			if tt.wantErr && !errors.Is(err, ErrInvalidState) {
				t.Errorf("CanTransitionTo(%q) = %v, want ErrInvalidState", tt.to, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("CanTransitionTo(%q) = %v, want nil", tt.to, err)
			}
		})
	}
}

func TestPayment_Validate(t *testing.T) {
	p := &Payment{
		SourceAccountID:      "acc-1",
		DestinationAccountID: "acc-1",
		Amount:               decimal.NewFromInt(10),
	}
	if err := p.Validate(); !errors.Is(err, ErrSameAccount) {
		t.Errorf("Validate() = %v, want ErrSameAccount", err)
	}

	p.DestinationAccountID = "acc-2"
	p.Amount = decimal.Zero
	if err := p.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Validate() = %v, want ErrInvalidAmount", err)
	}

	p.Amount = decimal.NewFromInt(10)
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestPayment_IsTerminal(t *testing.T) {
	terminal := []PaymentStatus{
		PaymentStatusCompleted,
		PaymentStatusFailed,
		PaymentStatusCancelled,
		PaymentStatusNeedsReconciliation,
	}
	for _, status := range terminal {
		if !(&Payment{Status: status}).IsTerminal() {
			t.Errorf("status %q should be terminal", status)
		}
	}

	for _, status := range []PaymentStatus{PaymentStatusPending, PaymentStatusProcessing} {
		if (&Payment{Status: status}).IsTerminal() {
			t.Errorf("status %q should not be terminal", status)
		}
	}
}
