package handler

import (
	"context"
	"net/http"

	"github.com/iho/payflow/internal/adapter/http/dto"
	"github.com/iho/payflow/internal/usecase"
)

// ReconciliationService lists payments awaiting manual reconciliation.
type ReconciliationService interface {
	ListAnomalies(ctx context.Context, limit, offset int) ([]*usecase.ReconciliationEntry, error)
}

// ReconciliationHandler exposes the operator view of stuck payments.
type ReconciliationHandler struct {
	reconciliationUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciliationUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationUC: reconciliationUC}
}

// List returns payments parked for manual reconciliation, oldest first.
func (h *ReconciliationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	entries, err := h.reconciliationUC.ListAnomalies(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list anomalies", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationEntriesFromUseCase(entries))
}
