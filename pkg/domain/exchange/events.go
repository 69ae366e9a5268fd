package exchange

import (
	"time"

	"github.com/amirasaad/tokenx/pkg/token"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SwapExecutedEvent is published after a swap's ledger mutation and record
// committed together.
type SwapExecutedEvent struct {
	SwapID     uuid.UUID       `json:"swap_id"`
	UserID     uuid.UUID       `json:"user_id"`
	FromToken  token.Symbol    `json:"from_token"`
	ToToken    token.Symbol    `json:"to_token"`
	FromAmount decimal.Decimal `json:"from_amount"`
	ToAmount   decimal.Decimal `json:"to_amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Type implements common.Event.
func (SwapExecutedEvent) Type() string { return "SwapExecutedEvent" }
