package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/payflow/internal/adapter/http/dto"
	"github.com/iho/payflow/internal/domain"
	"github.com/iho/payflow/internal/usecase"
)

// BalanceService is the balance surface the handler reads from.
type BalanceService interface {
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	GetAvailableBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// TransactionLister lists ledger transactions touching an account.
type TransactionLister interface {
	ListTransactionsByAccount(ctx context.Context, input usecase.ListTransactionsByAccountInput) ([]*domain.Transaction, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	balanceUC BalanceService
	ledgerUC  TransactionLister
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(balanceUC BalanceService, ledgerUC TransactionLister) *AccountHandler {
	return &AccountHandler{balanceUC: balanceUC, ledgerUC: ledgerUC}
}

// GetBalance returns the account's actual and available balance.
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.balanceUC.GetAccount(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get account", err.Error())
		return
	}

	available, err := h.balanceUC.GetAvailableBalance(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		AccountID: account.ID,
		Currency:  account.Currency,
		Balance:   account.Balance,
		Available: available,
	})
}

// ListTransactions lists ledger transactions for an account.
func (h *AccountHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	transactions, err := h.ledgerUC.ListTransactionsByAccount(r.Context(), usecase.ListTransactionsByAccountInput{
		AccountID: accountID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(transactions))
}
