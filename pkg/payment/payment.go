// Package payment creates payment intents with the external providers. No
// order or cart state is touched here.
package payment

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	ErrNotConfigured = errors.New("payment provider not configured")
)

// AmountRequest is the body both payment routes accept.
type AmountRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// MinorUnits converts a major-unit amount to cents, rounding half away from zero.
func MinorUnits(amount float64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

// MajorUnits formats amount with two decimals, as PayPal expects.
func MajorUnits(amount float64) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	return decimal.NewFromFloat(amount).StringFixed(2), nil
}
