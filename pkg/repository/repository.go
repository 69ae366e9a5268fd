// Package repository defines the data-access contracts the engine is written
// against: the ledger store, the append-only swap and stake logs, and the
// unit-of-work transaction boundary.
package repository

import (
	"context"
	"time"

	"github.com/amirasaad/tokenx/pkg/domain/exchange"
	"github.com/amirasaad/tokenx/pkg/domain/staking"
	"github.com/amirasaad/tokenx/pkg/token"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerRepository is the abstract transactional key-value ledger holding one
// balance mapping (token symbol -> amount) per account. Balances are read and
// conditionally mutated only inside a unit-of-work; no caller holds a balance
// across two separate mutation calls.
type LedgerRepository interface {
	// Balance returns the account's balance for one token. A missing entry
	// reads as zero.
	Balance(ctx context.Context, userID uuid.UUID, symbol token.Symbol) (decimal.Decimal, error)

	// Balances returns a snapshot of the account's full balance map.
	Balances(ctx context.Context, userID uuid.UUID) (map[token.Symbol]decimal.Decimal, error)

	// Credit increments the account's balance for the token by amount,
	// creating the entry if absent.
	Credit(ctx context.Context, userID uuid.UUID, symbol token.Symbol, amount decimal.Decimal) error

	// Debit decrements the account's balance by amount as a single
	// compare-and-decrement. It returns exchange.ErrInsufficientBalance when
	// the balance cannot cover the amount; no partial mutation occurs.
	Debit(ctx context.Context, userID uuid.UUID, symbol token.Symbol, amount decimal.Decimal) error
}

// SwapRepository is the append-only log of swap transactions.
type SwapRepository interface {
	Create(ctx context.Context, tx *exchange.SwapTransaction) error
	Get(ctx context.Context, id uuid.UUID) (*exchange.SwapTransaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*exchange.SwapTransaction, error)

	// CountUserSince counts completed swaps by one account created at or
	// after the window start.
	CountUserSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)

	// CountAllSince counts completed swaps across all accounts created at or
	// after the window start.
	CountAllSince(ctx context.Context, since time.Time) (int64, error)
}

// StakeAccrualUpdate carries the fields a yield settlement or withdrawal is
// allowed to mutate on a stake record.
type StakeAccrualUpdate struct {
	Status            staking.StakeStatus
	TotalYieldAccrued decimal.Decimal
	LastYieldAt       time.Time
}

// StakeRepository persists stake records.
type StakeRepository interface {
	Create(ctx context.Context, stake *staking.StakeRecord) error
	Get(ctx context.Context, id uuid.UUID) (*staking.StakeRecord, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*staking.StakeRecord, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*staking.StakeRecord, error)
	ListActive(ctx context.Context) ([]*staking.StakeRecord, error)

	// ApplyAccrual applies update to the stake only if its stored LastYieldAt
	// still equals expectedLastYieldAt, as one atomic read-modify-write.
	// It returns false when the guard did not match (a concurrent settlement
	// won), so callers never double-credit yield.
	ApplyAccrual(
		ctx context.Context,
		id uuid.UUID,
		expectedLastYieldAt time.Time,
		update StakeAccrualUpdate,
	) (bool, error)
}

// UnitOfWork provides the transaction boundary and repository access in one
// abstraction, ensuring every repository obtained inside Do shares the same
// atomic transaction: either all writes apply or none do.
type UnitOfWork interface {
	// Do runs fn inside a single atomic transaction.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	LedgerRepository() (LedgerRepository, error)
	SwapRepository() (SwapRepository, error)
	StakeRepository() (StakeRepository, error)
}
