package client

import (
	"context"
	"time"

	grpcerrors "github.com/iho/payflow/internal/adapter/grpc/errors"
	"github.com/iho/payflow/internal/domain"
	"github.com/iho/payflow/internal/usecase"
)

// LedgerClient adapts LedgerUseCase to the usecase.LedgerClient
// contract.
type LedgerClient struct {
	uc      *usecase.LedgerUseCase
	timeout time.Duration
}

func NewLedgerClient(uc *usecase.LedgerUseCase, timeout time.Duration) *LedgerClient {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &LedgerClient{uc: uc, timeout: timeout}
}

func (c *LedgerClient) CreateTransaction(ctx context.Context, req usecase.CreateTransactionRequest) (string, string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	transaction, err := c.uc.CreateTransaction(callCtx, req)
	if err != nil {
		return "", "", grpcerrors.MapDomainError(err)
	}

	return transaction.ID, transaction.ReferenceNumber, nil
}

func (c *LedgerClient) CompleteTransaction(ctx context.Context, transactionID string) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return grpcerrors.MapDomainError(c.uc.CompleteTransaction(callCtx, transactionID))
}

func (c *LedgerClient) FailTransaction(ctx context.Context, transactionID, reason string) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return grpcerrors.MapDomainError(c.uc.FailTransaction(callCtx, transactionID, reason))
}

func (c *LedgerClient) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	transaction, err := c.uc.GetTransaction(callCtx, transactionID)
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	return transaction, nil
}
