package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/payflow/internal/adapter/http/dto"
	"github.com/iho/payflow/internal/domain"
)

type transactionGetterStub struct {
	getFn func(ctx context.Context, id string) (*domain.Transaction, error)
}

func (s *transactionGetterStub) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.getFn(ctx, id)
}

func TestTransactionHandler_Get(t *testing.T) {
	h := NewTransactionHandler(&transactionGetterStub{
		getFn: func(ctx context.Context, id string) (*domain.Transaction, error) {
			return &domain.Transaction{
				ID:              id,
				ReferenceNumber: "PAY-20260901-000001",
				Status:          domain.TransactionStatusCompleted,
			}, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/transactions/tx-1", nil), "id", "tx-1")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.ReferenceNumber != "PAY-20260901-000001" {
		t.Fatalf("unexpected reference number %q", resp.ReferenceNumber)
	}
}

func TestTransactionHandler_Get_NotFound(t *testing.T) {
	h := NewTransactionHandler(&transactionGetterStub{
		getFn: func(ctx context.Context, id string) (*domain.Transaction, error) {
			return nil, domain.ErrTransactionNotFound
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/transactions/missing", nil), "id", "missing")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
