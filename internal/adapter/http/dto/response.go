package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/payflow/internal/domain"
	"github.com/iho/payflow/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID                   string          `json:"id"`
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID string          `json:"destination_account_id"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	Status               string          `json:"status"`
	ReservationID        *string         `json:"reservation_id,omitempty"`
	TransactionID        *string         `json:"transaction_id,omitempty"`
	Description          string          `json:"description,omitempty"`
	FailureReason        *string         `json:"failure_reason,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// PaymentFromDomain converts a domain payment to a response.
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:                   p.ID,
		SourceAccountID:      p.SourceAccountID,
		DestinationAccountID: p.DestinationAccountID,
		Amount:               p.Amount,
		Currency:             p.Currency,
		Status:               string(p.Status),
		ReservationID:        p.ReservationID,
		TransactionID:        p.TransactionID,
		Description:          p.Description,
		FailureReason:        p.FailureReason,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

// TransactionResponse represents a ledger transaction in API responses.
type TransactionResponse struct {
	ID                   string          `json:"id"`
	ReferenceNumber      string          `json:"reference_number"`
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID string          `json:"destination_account_id"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	Type                 string          `json:"type"`
	Status               string          `json:"status"`
	PaymentID            *string         `json:"payment_id,omitempty"`
	Description          string          `json:"description,omitempty"`
	FailureReason        *string         `json:"failure_reason,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	CompletedAt          *time.Time      `json:"completed_at,omitempty"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:                   t.ID,
		ReferenceNumber:      t.ReferenceNumber,
		SourceAccountID:      t.SourceAccountID,
		DestinationAccountID: t.DestinationAccountID,
		Amount:               t.Amount,
		Currency:             t.Currency,
		Type:                 string(t.Type),
		Status:               string(t.Status),
		PaymentID:            t.PaymentID,
		Description:          t.Description,
		FailureReason:        t.FailureReason,
		CreatedAt:            t.CreatedAt,
		CompletedAt:          t.CompletedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// BalanceResponse represents an account's balance in API responses.
// Available is the actual balance minus pending holds.
type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Available decimal.Decimal `json:"available"`
}

// ReconciliationEntryResponse represents a payment awaiting manual
// reconciliation, with the current state of its saga participants.
type ReconciliationEntryResponse struct {
	Payment           *PaymentResponse `json:"payment"`
	ReservationStatus string           `json:"reservation_status,omitempty"`
	TransactionStatus string           `json:"transaction_status,omitempty"`
	DetectedAt        time.Time        `json:"detected_at"`
}

// ReconciliationEntriesFromUseCase converts reconciliation entries to responses.
func ReconciliationEntriesFromUseCase(entries []*usecase.ReconciliationEntry) []*ReconciliationEntryResponse {
	result := make([]*ReconciliationEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = &ReconciliationEntryResponse{
			Payment:           PaymentFromDomain(e.Payment),
			ReservationStatus: string(e.ReservationStatus),
			TransactionStatus: string(e.TransactionStatus),
			DetectedAt:        e.DetectedAt,
		}
	}
	return result
}
