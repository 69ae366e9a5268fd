// Package staking defines the domain types for time-locked stakes: the
// configured staking options, stake records, and the yield accrual math.
//
// Yield follows a fixed 365-day convention with fractional elapsed days:
//
//	pendingYield = amount * yieldRate * (daysSinceLastYield / 365)
//
// Early withdrawal halves only the pending (unsettled) portion; yield already
// settled into TotalYieldAccrued is never penalized.
package staking

import (
	"time"

	"github.com/amirasaad/tokenx/pkg/token"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// daysPerYear is the fixed day-count convention, not leap-year adjusted.
var daysPerYear = decimal.NewFromInt(365)

// earlyPenaltyFactor is applied to unsettled yield on early withdrawal.
var earlyPenaltyFactor = decimal.RequireFromString("0.5")

// StakeStatus is the lifecycle status of a stake record.
type StakeStatus string

const (
	// StakeActive marks a stake inside or past its lock period that still
	// accrues yield and has not been claimed.
	StakeActive StakeStatus = "active"
	// StakeCompleted marks a matured stake whose funds remain claimable.
	StakeCompleted StakeStatus = "completed"
	// StakeWithdrawn is terminal: principal and yield were returned.
	StakeWithdrawn StakeStatus = "withdrawn"
)

// StakingOption is an immutable menu entry: a stake-token / yield-token /
// lock-period combination with an annualized yield rate. Options are
// admin-configured reference data, looked up and never created per request.
type StakingOption struct {
	TokenType      token.Symbol
	YieldToken     token.Symbol
	YieldRate      decimal.Decimal
	LockPeriodDays int
	MinAmount      decimal.Decimal
	MaxAmount      decimal.Decimal
}

// Matches reports whether the option is exactly the requested triple.
func (o StakingOption) Matches(tokenType, yieldToken token.Symbol, lockPeriodDays int) bool {
	return o.TokenType == tokenType &&
		o.YieldToken == yieldToken &&
		o.LockPeriodDays == lockPeriodDays
}

// StakeRecord is one time-locked staking position. While active, only
// TotalYieldAccrued and LastYieldAt are mutated; withdrawn is terminal.
type StakeRecord struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	TokenType         token.Symbol
	Amount            decimal.Decimal
	YieldToken        token.Symbol
	YieldRate         decimal.Decimal
	LockPeriodDays    int
	StartDate         time.Time
	EndDate           time.Time
	TotalYieldAccrued decimal.Decimal
	LastYieldAt       time.Time
	Status            StakeStatus
}

// NewStakeRecord opens a stake from the selected option at the given instant.
func NewStakeRecord(userID uuid.UUID, opt StakingOption, amount decimal.Decimal, now time.Time) *StakeRecord {
	return &StakeRecord{
		ID:                uuid.New(),
		UserID:            userID,
		TokenType:         opt.TokenType,
		Amount:            amount,
		YieldToken:        opt.YieldToken,
		YieldRate:         opt.YieldRate,
		LockPeriodDays:    opt.LockPeriodDays,
		StartDate:         now,
		EndDate:           now.AddDate(0, 0, opt.LockPeriodDays),
		TotalYieldAccrued: decimal.Zero,
		LastYieldAt:       now,
		Status:            StakeActive,
	}
}

// DaysSinceLastYield returns the fractional days elapsed since the last
// settlement. Never negative.
func (s *StakeRecord) DaysSinceLastYield(now time.Time) decimal.Decimal {
	if !now.After(s.LastYieldAt) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(now.Sub(s.LastYieldAt).Hours() / 24)
}

// PendingYield computes the unsettled yield accrued since LastYieldAt.
func (s *StakeRecord) PendingYield(now time.Time) decimal.Decimal {
	days := s.DaysSinceLastYield(now)
	if days.Sign() == 0 {
		return decimal.Zero
	}
	return s.Amount.Mul(s.YieldRate).Mul(days).Div(daysPerYear)
}

// ProjectedYield is the read-only projection returned to holders: settled
// yield plus the pending portion, with no penalty applied.
func (s *StakeRecord) ProjectedYield(now time.Time) decimal.Decimal {
	return s.TotalYieldAccrued.Add(s.PendingYield(now))
}

// Matured reports whether the lock period has elapsed.
func (s *StakeRecord) Matured(now time.Time) bool {
	return !now.Before(s.EndDate)
}

// WithdrawableYield computes the total yield paid out on withdrawal at the
// given instant. Before maturity the pending portion is halved; the settled
// TotalYieldAccrued is paid in full either way.
func (s *StakeRecord) WithdrawableYield(now time.Time) (yield decimal.Decimal, early bool) {
	pending := s.PendingYield(now)
	early = !s.Matured(now)
	if early {
		pending = pending.Mul(earlyPenaltyFactor)
	}
	return s.TotalYieldAccrued.Add(pending), early
}
