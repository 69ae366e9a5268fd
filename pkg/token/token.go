// Package token provides value objects for reward-token symbols and amounts.
//
// Invariants:
//   - A Symbol is 2-8 uppercase alphanumeric characters starting with a letter.
//   - Amounts are arbitrary-precision decimals and are never negative once held
//     in a ledger balance.
package token

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidSymbol is returned when a token symbol does not match the
	// expected format.
	ErrInvalidSymbol = errors.New("invalid token symbol")

	// ErrAmountNotPositive is returned when an operation requires a strictly
	// positive amount.
	ErrAmountNotPositive = errors.New("amount must be positive")
)

// Symbol represents a reward-token denomination (e.g., "OBX", "STX").
type Symbol string

// IsValid reports whether the symbol has a well-formed format.
func (s Symbol) IsValid() bool {
	if len(s) < 2 || len(s) > 8 {
		return false
	}
	if s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// String returns the string representation of the symbol.
func (s Symbol) String() string { return string(s) }

// ParseSymbol validates raw input and returns it as a Symbol.
func ParseSymbol(raw string) (Symbol, error) {
	s := Symbol(raw)
	if !s.IsValid() {
		return "", ErrInvalidSymbol
	}
	return s, nil
}

// PositiveAmount validates that amount is strictly positive.
func PositiveAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrAmountNotPositive
	}
	return nil
}
