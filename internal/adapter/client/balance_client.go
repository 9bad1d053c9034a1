// Package client provides in-process clients for the balance and
// ledger services, used when the services are deployed in one binary.
// They present the same contract as the network clients: every error
// crosses the boundary as a gRPC status code and every call carries
// its own deadline, so the orchestrator cannot tell the difference.
package client

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	grpcerrors "github.com/iho/payflow/internal/adapter/grpc/errors"
	"github.com/iho/payflow/internal/domain"
	"github.com/iho/payflow/internal/usecase"
)

// DefaultCallTimeout bounds a single remote call, not the whole saga.
const DefaultCallTimeout = 5 * time.Second

// BalanceClient adapts BalanceUseCase to the usecase.BalanceClient
// contract.
type BalanceClient struct {
	uc      *usecase.BalanceUseCase
	timeout time.Duration
}

func NewBalanceClient(uc *usecase.BalanceUseCase, timeout time.Duration) *BalanceClient {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &BalanceClient{uc: uc, timeout: timeout}
}

func (c *BalanceClient) Reserve(ctx context.Context, req usecase.ReserveRequest) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reservation, err := c.uc.Reserve(callCtx, usecase.ReserveInput{
		AccountID:      req.AccountID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		IdempotencyKey: req.IdempotencyKey,
		TTL:            req.TTL,
	})
	if err != nil {
		return "", grpcerrors.MapDomainError(err)
	}

	return reservation.ID, nil
}

func (c *BalanceClient) Commit(ctx context.Context, reservationID, transactionID string) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return grpcerrors.MapDomainError(c.uc.Commit(callCtx, reservationID, transactionID))
}

func (c *BalanceClient) Release(ctx context.Context, reservationID, reason string) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return grpcerrors.MapDomainError(c.uc.Release(callCtx, reservationID, reason))
}

func (c *BalanceClient) GetReservation(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reservation, err := c.uc.GetReservation(callCtx, reservationID)
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	return reservation, nil
}

func (c *BalanceClient) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	available, err := c.uc.GetAvailableBalance(callCtx, accountID)
	if err != nil {
		return decimal.Zero, grpcerrors.MapDomainError(err)
	}

	return available, nil
}
