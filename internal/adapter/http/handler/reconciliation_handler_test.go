package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iho/payflow/internal/adapter/http/dto"
	"github.com/iho/payflow/internal/domain"
	"github.com/iho/payflow/internal/usecase"
)

type reconciliationServiceStub struct {
	listFn func(ctx context.Context, limit, offset int) ([]*usecase.ReconciliationEntry, error)
}

func (s *reconciliationServiceStub) ListAnomalies(ctx context.Context, limit, offset int) ([]*usecase.ReconciliationEntry, error) {
	return s.listFn(ctx, limit, offset)
}

func TestReconciliationHandler_List(t *testing.T) {
	detectedAt := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	h := NewReconciliationHandler(&reconciliationServiceStub{
		listFn: func(ctx context.Context, limit, offset int) ([]*usecase.ReconciliationEntry, error) {
			return []*usecase.ReconciliationEntry{
				{
					Payment:           &domain.Payment{ID: "pay-1", Status: domain.PaymentStatusNeedsReconciliation},
					ReservationStatus: domain.ReservationStatusCommitted,
					TransactionStatus: domain.TransactionStatusPending,
					DetectedAt:        detectedAt,
				},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/reconciliation", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []*dto.ReconciliationEntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(resp))
	}
	if resp[0].ReservationStatus != "committed" || resp[0].TransactionStatus != "pending" {
		t.Fatalf("unexpected saga participant states: %+v", resp[0])
	}
}

func TestReconciliationHandler_List_Error(t *testing.T) {
	h := NewReconciliationHandler(&reconciliationServiceStub{
		listFn: func(ctx context.Context, limit, offset int) ([]*usecase.ReconciliationEntry, error) {
			return nil, errors.New("database unavailable")
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/reconciliation", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
