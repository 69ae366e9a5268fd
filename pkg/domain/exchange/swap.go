package exchange

import (
	"time"

	"github.com/amirasaad/tokenx/pkg/token"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SwapStatus is the terminal status of a swap transaction record.
type SwapStatus string

const (
	// SwapCompleted marks a swap whose ledger mutation committed.
	SwapCompleted SwapStatus = "completed"
	// SwapFailed marks a swap that validated but whose commit failed.
	SwapFailed SwapStatus = "failed"
)

// SwapTransaction is the append-only record of one executed swap. It is
// created exactly once and never mutated afterwards.
type SwapTransaction struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	FromToken  token.Symbol
	ToToken    token.Symbol
	FromAmount decimal.Decimal
	ToAmount   decimal.Decimal
	Rate       decimal.Decimal
	Fee        decimal.Decimal
	Status     SwapStatus
	CreatedAt  time.Time
}

// NewSwapTransaction builds a completed swap record from an executed quote.
func NewSwapTransaction(userID uuid.UUID, q Quote, at time.Time) *SwapTransaction {
	return &SwapTransaction{
		ID:         uuid.New(),
		UserID:     userID,
		FromToken:  q.FromToken,
		ToToken:    q.ToToken,
		FromAmount: q.InputAmount,
		ToAmount:   q.OutputAmount,
		Rate:       q.Rate,
		Fee:        q.Fee,
		Status:     SwapCompleted,
		CreatedAt:  at,
	}
}
