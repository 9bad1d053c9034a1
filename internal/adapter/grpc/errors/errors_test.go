package errors_test

import (
	"context"
	stdErrors "errors"
	"testing"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	grpcerrors "github.com/iho/payflow/internal/adapter/grpc/errors"
	"github.com/iho/payflow/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		want    codes.Code
		wantMsg string
	}{
		{"nil error", nil, codes.OK, ""},
		{"account not found", domain.ErrAccountNotFound, codes.NotFound, "account not found"},
		{"reservation not found", domain.ErrReservationNotFound, codes.NotFound, "reservation not found"},
		{"transaction not found", domain.ErrTransactionNotFound, codes.NotFound, "transaction not found"},
		{"payment not found", domain.ErrPaymentNotFound, codes.NotFound, "payment not found"},
		{"invalid amount", domain.ErrInvalidAmount, codes.InvalidArgument, "invalid amount"},
		{"same account", domain.ErrSameAccount, codes.InvalidArgument, "source and destination accounts must differ"},
		{"invalid currency", domain.ErrInvalidCurrency, codes.InvalidArgument, "invalid currency code"},
		{"currency mismatch", domain.ErrCurrencyMismatch, codes.InvalidArgument, "currency does not match account currency"},
		{"invalid idempotency key", domain.ErrInvalidIdempotencyKey, codes.InvalidArgument, "invalid idempotency key"},
		{"duplicate idempotency", domain.ErrDuplicateIdempotency, codes.AlreadyExists, "idempotency key already exists"},
		{"deadline exceeded", context.DeadlineExceeded, codes.DeadlineExceeded, "operation timed out"},
		{"canceled", context.Canceled, codes.Canceled, "operation was canceled"},
		{"unknown error", stdErrors.New("boom"), codes.Internal, "an internal error occurred"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := grpcerrors.MapDomainError(tt.err)

			if tt.err == nil && got != nil {
				t.Fatalf("expected nil, got %v", got)
			}

			if tt.err == nil {
				return
			}

			st, ok := status.FromError(got)
			if !ok {
				t.Fatalf("expected gRPC status error, got %v", got)
			}

			if st.Code() != tt.want {
				t.Fatalf("expected code %s, got %s", tt.want, st.Code())
			}

			if st.Message() != tt.wantMsg {
				t.Fatalf("expected message %q, got %q", tt.wantMsg, st.Message())
			}
		})
	}
}

// State and balance violations keep their detail: the saga reads the
// message to decide compensation.
func TestMapDomainError_PreconditionDetail(t *testing.T) {
	t.Parallel()

	insufficient := &domain.InsufficientBalanceError{
		Requested: decimal.NewFromInt(5000),
		Available: decimal.NewFromInt(100),
	}
	st := status.Convert(grpcerrors.MapDomainError(insufficient))
	if st.Code() != codes.FailedPrecondition {
		t.Fatalf("expected FailedPrecondition, got %s", st.Code())
	}
	if st.Message() != insufficient.Error() {
		t.Fatalf("expected %q, got %q", insufficient.Error(), st.Message())
	}

	invalidState := &domain.InvalidStateError{Entity: "reservation", Current: "expired", Attempted: "committed"}
	st = status.Convert(grpcerrors.MapDomainError(invalidState))
	if st.Code() != codes.FailedPrecondition {
		t.Fatalf("expected FailedPrecondition, got %s", st.Code())
	}
	if st.Message() != invalidState.Error() {
		t.Fatalf("expected %q, got %q", invalidState.Error(), st.Message())
	}
}
