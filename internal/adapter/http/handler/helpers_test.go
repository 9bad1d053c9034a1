package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/payflow/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrAccountNotFound, http.StatusNotFound},
		{domain.ErrReservationNotFound, http.StatusNotFound},
		{domain.ErrTransactionNotFound, http.StatusNotFound},
		{domain.ErrPaymentNotFound, http.StatusNotFound},
		{domain.ErrInvalidAmount, http.StatusBadRequest},
		{domain.ErrSameAccount, http.StatusBadRequest},
		{domain.ErrInvalidCurrency, http.StatusBadRequest},
		{domain.ErrCurrencyMismatch, http.StatusBadRequest},
		{domain.ErrInsufficientBalance, http.StatusUnprocessableEntity},
		{domain.ErrInvalidState, http.StatusConflict},
		{domain.ErrDuplicateIdempotency, http.StatusConflict},
		{fmt.Errorf("wrapped: %w", domain.ErrAmountTooLarge), http.StatusBadRequest},
		{fmt.Errorf("surprise"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := mapDomainError(tt.err); got != tt.want {
			t.Errorf("mapDomainError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestMapDomainError_StructuredErrors(t *testing.T) {
	insufficient := &domain.InsufficientBalanceError{
		Requested: decimal.NewFromInt(100),
		Available: decimal.NewFromInt(40),
	}
	if got := mapDomainError(insufficient); got != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for insufficient balance, got %d", got)
	}

	invalidState := &domain.InvalidStateError{Entity: "reservation", Current: "expired", Attempted: "committed"}
	if got := mapDomainError(invalidState); got != http.StatusConflict {
		t.Fatalf("expected 409 for invalid state, got %d", got)
	}
}

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?limit=7&bad=oops", nil)

	if got := parseIntQuery(req, "limit", 20); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	if got := parseIntQuery(req, "missing", 20); got != 20 {
		t.Fatalf("expected default 20, got %d", got)
	}
	if got := parseIntQuery(req, "bad", 20); got != 20 {
		t.Fatalf("expected default for invalid value, got %d", got)
	}
}
