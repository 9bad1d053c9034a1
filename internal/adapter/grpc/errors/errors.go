package errors

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/iho/payflow/internal/domain"
)

// MapDomainError converts domain errors to appropriate gRPC status codes
// This prevents internal error details from being exposed to clients
func MapDomainError(err error) error {
	if err == nil {
		return nil
	}

	// Map known domain errors to specific gRPC codes
	switch {
	// Not Found errors
	case errors.Is(err, domain.ErrAccountNotFound):
		return status.Error(codes.NotFound, "account not found")
	case errors.Is(err, domain.ErrReservationNotFound):
		return status.Error(codes.NotFound, "reservation not found")
	case errors.Is(err, domain.ErrTransactionNotFound):
		return status.Error(codes.NotFound, "transaction not found")
	case errors.Is(err, domain.ErrPaymentNotFound):
		return status.Error(codes.NotFound, "payment not found")

	// Invalid Argument errors
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooSmall),
		errors.Is(err, domain.ErrAmountTooLarge):
		return status.Error(codes.InvalidArgument, "invalid amount")
	case errors.Is(err, domain.ErrSameAccount):
		return status.Error(codes.InvalidArgument, "source and destination accounts must differ")
	case errors.Is(err, domain.ErrInvalidCurrency):
		return status.Error(codes.InvalidArgument, "invalid currency code")
	case errors.Is(err, domain.ErrCurrencyMismatch):
		return status.Error(codes.InvalidArgument, "currency does not match account currency")
	case errors.Is(err, domain.ErrInvalidIdempotencyKey):
		return status.Error(codes.InvalidArgument, "invalid idempotency key")
	case errors.Is(err, domain.ErrDescriptionTooLong):
		return status.Error(codes.InvalidArgument, "description too long")

	// Precondition Failed errors (business logic violations). The
	// message carries the state detail: saga compensation decisions
	// depend on it.
	case errors.Is(err, domain.ErrInsufficientBalance):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		return status.Error(codes.FailedPrecondition, err.Error())

	// Idempotency conflicts with a different payload
	case errors.Is(err, domain.ErrDuplicateIdempotency):
		return status.Error(codes.AlreadyExists, "idempotency key already exists")

	// Context errors (timeouts, cancellations)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "operation timed out")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "operation was canceled")

	// Default: Internal error (don't expose details)
	default:
		return status.Error(codes.Internal, "an internal error occurred")
	}
}
