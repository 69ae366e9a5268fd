package staking

import (
	"time"

	"github.com/amirasaad/tokenx/pkg/token"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StakeOpenedEvent is published after a stake's principal debit and record
// insert committed together.
type StakeOpenedEvent struct {
	StakeID    uuid.UUID       `json:"stake_id"`
	UserID     uuid.UUID       `json:"user_id"`
	TokenType  token.Symbol    `json:"token_type"`
	Amount     decimal.Decimal `json:"amount"`
	EndDate    time.Time       `json:"end_date"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Type implements common.Event.
func (StakeOpenedEvent) Type() string { return "StakeOpenedEvent" }

// StakeWithdrawnEvent is published after a stake withdrawal committed.
type StakeWithdrawnEvent struct {
	StakeID         uuid.UUID       `json:"stake_id"`
	UserID          uuid.UUID       `json:"user_id"`
	ReturnedAmount  decimal.Decimal `json:"returned_amount"`
	YieldAmount     decimal.Decimal `json:"yield_amount"`
	EarlyWithdrawal bool            `json:"early_withdrawal"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

// Type implements common.Event.
func (StakeWithdrawnEvent) Type() string { return "StakeWithdrawnEvent" }

// YieldsProcessedEvent summarizes one bulk yield-processing run.
type YieldsProcessedEvent struct {
	ProcessedCount int       `json:"processed_count"`
	FailedCount    int       `json:"failed_count"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Type implements common.Event.
func (YieldsProcessedEvent) Type() string { return "YieldsProcessedEvent" }
