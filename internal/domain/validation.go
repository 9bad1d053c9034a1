package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidCurrency       = errors.New("invalid currency code")
	ErrAmountTooLarge        = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall        = errors.New("amount below minimum allowed")
	ErrInvalidIdempotencyKey = errors.New("invalid idempotency key")
	ErrDescriptionTooLong    = errors.New("description exceeds maximum length")
)

// Validation constants
const (
	MaxPaymentAmount     = "1000000000000" // 1 trillion
	MinPaymentAmount     = "0.01"
	MaxIdempotencyKeyLen = 255
	MaxDescriptionLength = 512
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "RUB": true, "TRY": true, "HKD": true,
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a valid ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateAmount validates payment/reservation amounts
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	minAmount, _ := decimal.NewFromString(MinPaymentAmount)
	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrAmountTooSmall, MinPaymentAmount)
	}

	maxAmount, _ := decimal.NewFromString(MaxPaymentAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxPaymentAmount)
	}

	return nil
}

// ValidateIdempotencyKey validates caller-supplied idempotency keys
func ValidateIdempotencyKey(key string) error {
	key = strings.TrimSpace(key)

	if key == "" {
		return fmt.Errorf("%w: key cannot be empty", ErrInvalidIdempotencyKey)
	}

	if len(key) > MaxIdempotencyKeyLen {
		return fmt.Errorf("%w: key exceeds %d characters", ErrInvalidIdempotencyKey, MaxIdempotencyKeyLen)
	}

	return nil
}

// ValidateDescription validates free-form descriptions
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: maximum is %d characters", ErrDescriptionTooLong, MaxDescriptionLength)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
