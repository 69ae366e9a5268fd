// Package exchange defines the domain types for token conversion: directed
// token pairs, executed swap transactions and their domain errors and events.
package exchange

import (
	"errors"
	"fmt"

	"github.com/amirasaad/tokenx/pkg/token"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidPair is returned when a token pair violates its invariants.
	ErrInvalidPair = errors.New("invalid token pair")
)

// TokenPair is a directed conversion rule between two token symbols.
// Rates for A->B and B->A are independent entries, never required to be
// reciprocal. Pairs are deactivated, never deleted.
//
// Invariants:
//   - Rate > 0
//   - 0 <= Fee < 1
//   - MinAmount <= MaxAmount
type TokenPair struct {
	FromToken token.Symbol
	ToToken   token.Symbol
	Rate      decimal.Decimal
	BaseRate  decimal.Decimal
	Fee       decimal.Decimal
	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
	IsActive  bool
}

// Validate checks all pair invariants.
func (p TokenPair) Validate() error {
	if !p.FromToken.IsValid() || !p.ToToken.IsValid() {
		return fmt.Errorf("%w: bad symbol %q->%q", ErrInvalidPair, p.FromToken, p.ToToken)
	}
	if p.FromToken == p.ToToken {
		return fmt.Errorf("%w: identical tokens %q", ErrInvalidPair, p.FromToken)
	}
	if p.Rate.Sign() <= 0 {
		return fmt.Errorf("%w: rate must be positive", ErrInvalidPair)
	}
	if p.Fee.Sign() < 0 || p.Fee.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: fee must be in [0,1)", ErrInvalidPair)
	}
	if p.MinAmount.GreaterThan(p.MaxAmount) {
		return fmt.Errorf("%w: min amount exceeds max amount", ErrInvalidPair)
	}
	return nil
}

// Quote is the result of pricing a prospective swap. It is a pure computation
// and carries no ledger side effects.
type Quote struct {
	FromToken    token.Symbol
	ToToken      token.Symbol
	InputAmount  decimal.Decimal
	OutputAmount decimal.Decimal
	Fee          decimal.Decimal
	Rate         decimal.Decimal
}
