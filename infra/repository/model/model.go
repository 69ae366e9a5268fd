// Package model holds the gorm persistence models for the ledger, the swap
// log and stake records.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Balance is one (account, token) ledger entry. Amounts never go negative;
// the debit path enforces this inside the database.
type Balance struct {
	UserID    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Token     string          `gorm:"type:varchar(8);primaryKey"`
	Amount    decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`
	UpdatedAt time.Time
}

// TableName specifies the table name for the Balance model.
func (Balance) TableName() string { return "balances" }

// SwapTransaction is the persisted append-only swap record.
type SwapTransaction struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID       `gorm:"type:uuid;index:idx_swaps_user_created"`
	FromToken  string          `gorm:"type:varchar(8);not null"`
	ToToken    string          `gorm:"type:varchar(8);not null"`
	FromAmount decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	ToAmount   decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	Rate       decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	Fee        decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	Status     string          `gorm:"type:varchar(16);not null"`
	CreatedAt  time.Time       `gorm:"index:idx_swaps_user_created;index"`
}

// TableName specifies the table name for the SwapTransaction model.
func (SwapTransaction) TableName() string { return "swap_transactions" }

// StakeRecord is the persisted staking position.
type StakeRecord struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID       `gorm:"type:uuid;index"`
	TokenType         string          `gorm:"type:varchar(8);not null"`
	Amount            decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	YieldToken        string          `gorm:"type:varchar(8);not null"`
	YieldRate         decimal.Decimal `gorm:"type:numeric(10,6);not null"`
	LockPeriodDays    int             `gorm:"not null"`
	StartDate         time.Time       `gorm:"not null"`
	EndDate           time.Time       `gorm:"not null"`
	TotalYieldAccrued decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`
	LastYieldAt       time.Time       `gorm:"not null"`
	Status            string          `gorm:"type:varchar(16);not null;index"`
}

// TableName specifies the table name for the StakeRecord model.
func (StakeRecord) TableName() string { return "stake_records" }
