package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an immutable amount in a specific currency. Arithmetic across
// currencies is never implicit; the account aggregate rejects mismatches
// before any Money values are combined.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewMoney builds a Money value, normalizing the currency code to upper case.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	code, err := normalizeCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: amount, Currency: code}, nil
}

func normalizeCurrency(currency string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if len(code) != 3 {
		return "", ErrInvalidCurrencyCode
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", ErrInvalidCurrencyCode
		}
	}
	return code, nil
}

// Add returns the sum of two amounts in the same currency.
func (m Money) Add(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub returns the difference of two amounts in the same currency.
func (m Money) Sub(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

// Equal reports whether both amount and currency match exactly.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

// SameCurrency reports whether the other value uses the same currency code.
func (m Money) SameCurrency(other Money) bool {
	return m.Currency == other.Currency
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.String(), m.Currency)
}
