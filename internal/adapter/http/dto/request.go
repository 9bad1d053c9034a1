package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/payflow/internal/usecase"
)

// CreatePaymentRequest represents a request to create a payment.
type CreatePaymentRequest struct {
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID string          `json:"destination_account_id"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	Description          string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePaymentRequest) ToUseCaseInput() usecase.CreatePaymentInput {
	return usecase.CreatePaymentInput{
		SourceAccountID:      r.SourceAccountID,
		DestinationAccountID: r.DestinationAccountID,
		Amount:               r.Amount,
		Currency:             r.Currency,
		Description:          r.Description,
	}
}
