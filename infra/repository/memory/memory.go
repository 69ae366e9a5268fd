// Package memory provides an in-memory implementation of the repository
// contracts. It backs the "memory" ledger driver for local development and
// the service test suites. Transactions are serialized through one store
// lock and rolled back by snapshot, so atomicity matches the contract: either
// every write inside Do applies or none do.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/amirasaad/tokenx/pkg/domain/exchange"
	"github.com/amirasaad/tokenx/pkg/domain/staking"
	"github.com/amirasaad/tokenx/pkg/repository"
	"github.com/amirasaad/tokenx/pkg/token"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type state struct {
	balances map[uuid.UUID]map[token.Symbol]decimal.Decimal
	swaps    []exchange.SwapTransaction
	stakes   map[uuid.UUID]staking.StakeRecord
}

func newState() *state {
	return &state{
		balances: make(map[uuid.UUID]map[token.Symbol]decimal.Decimal),
		stakes:   make(map[uuid.UUID]staking.StakeRecord),
	}
}

func (s *state) clone() *state {
	c := newState()
	for user, m := range s.balances {
		cm := make(map[token.Symbol]decimal.Decimal, len(m))
		for sym, amt := range m {
			cm[sym] = amt
		}
		c.balances[user] = cm
	}
	c.swaps = make([]exchange.SwapTransaction, len(s.swaps))
	copy(c.swaps, s.swaps)
	for id, st := range s.stakes {
		c.stakes[id] = st
	}
	return c
}

// UoW is the in-memory unit of work.
type UoW struct {
	mu sync.Mutex
	st *state
	// tx is non-nil inside Do; repositories always operate on it.
	tx *state
}

// NewUoW creates an empty in-memory store.
func NewUoW() *UoW {
	return &UoW{st: newState()}
}

// Do runs fn against a working copy of the store under the store lock and
// publishes the copy only when fn succeeds.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	txn := &UoW{st: u.st, tx: u.st.clone()}
	if err := fn(txn); err != nil {
		return err
	}
	u.st = txn.tx
	return nil
}

// LedgerRepository implements repository.UnitOfWork.
func (u *UoW) LedgerRepository() (repository.LedgerRepository, error) {
	return &ledgerRepo{u: u}, nil
}

// SwapRepository implements repository.UnitOfWork.
func (u *UoW) SwapRepository() (repository.SwapRepository, error) {
	return &swapRepo{u: u}, nil
}

// StakeRepository implements repository.UnitOfWork.
func (u *UoW) StakeRepository() (repository.StakeRepository, error) {
	return &stakeRepo{u: u}, nil
}

// current returns the state repositories must read and write. Outside a
// transaction, single operations take the store lock themselves.
func (u *UoW) current() (*state, func()) {
	if u.tx != nil {
		return u.tx, func() {}
	}
	u.mu.Lock()
	return u.st, u.mu.Unlock
}

// SeedBalance credits an account directly, bypassing the transaction
// boundary. Test and bootstrap helper.
func (u *UoW) SeedBalance(userID uuid.UUID, symbol token.Symbol, amount decimal.Decimal) {
	u.mu.Lock()
	defer u.mu.Unlock()
	m, ok := u.st.balances[userID]
	if !ok {
		m = make(map[token.Symbol]decimal.Decimal)
		u.st.balances[userID] = m
	}
	m[symbol] = m[symbol].Add(amount)
}

type ledgerRepo struct{ u *UoW }

func (r *ledgerRepo) Balance(ctx context.Context, userID uuid.UUID, symbol token.Symbol) (decimal.Decimal, error) {
	st, unlock := r.u.current()
	defer unlock()
	return st.balances[userID][symbol], nil
}

func (r *ledgerRepo) Balances(ctx context.Context, userID uuid.UUID) (map[token.Symbol]decimal.Decimal, error) {
	st, unlock := r.u.current()
	defer unlock()
	out := make(map[token.Symbol]decimal.Decimal, len(st.balances[userID]))
	for sym, amt := range st.balances[userID] {
		out[sym] = amt
	}
	return out, nil
}

func (r *ledgerRepo) Credit(ctx context.Context, userID uuid.UUID, symbol token.Symbol, amount decimal.Decimal) error {
	if err := token.PositiveAmount(amount); err != nil {
		return err
	}
	st, unlock := r.u.current()
	defer unlock()
	m, ok := st.balances[userID]
	if !ok {
		m = make(map[token.Symbol]decimal.Decimal)
		st.balances[userID] = m
	}
	m[symbol] = m[symbol].Add(amount)
	return nil
}

func (r *ledgerRepo) Debit(ctx context.Context, userID uuid.UUID, symbol token.Symbol, amount decimal.Decimal) error {
	if err := token.PositiveAmount(amount); err != nil {
		return err
	}
	st, unlock := r.u.current()
	defer unlock()
	balance := st.balances[userID][symbol]
	if balance.LessThan(amount) {
		return exchange.ErrInsufficientBalance
	}
	st.balances[userID][symbol] = balance.Sub(amount)
	return nil
}

type swapRepo struct{ u *UoW }

func (r *swapRepo) Create(ctx context.Context, tx *exchange.SwapTransaction) error {
	st, unlock := r.u.current()
	defer unlock()
	st.swaps = append(st.swaps, *tx)
	return nil
}

func (r *swapRepo) Get(ctx context.Context, id uuid.UUID) (*exchange.SwapTransaction, error) {
	st, unlock := r.u.current()
	defer unlock()
	for i := range st.swaps {
		if st.swaps[i].ID == id {
			s := st.swaps[i]
			return &s, nil
		}
	}
	return nil, exchange.ErrSwapNotFound
}

func (r *swapRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*exchange.SwapTransaction, error) {
	st, unlock := r.u.current()
	defer unlock()
	var out []*exchange.SwapTransaction
	for i := range st.swaps {
		if st.swaps[i].UserID == userID {
			s := st.swaps[i]
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *swapRepo) CountUserSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	st, unlock := r.u.current()
	defer unlock()
	var n int64
	for i := range st.swaps {
		s := &st.swaps[i]
		if s.UserID == userID && s.Status == exchange.SwapCompleted && !s.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *swapRepo) CountAllSince(ctx context.Context, since time.Time) (int64, error) {
	st, unlock := r.u.current()
	defer unlock()
	var n int64
	for i := range st.swaps {
		s := &st.swaps[i]
		if s.Status == exchange.SwapCompleted && !s.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

type stakeRepo struct{ u *UoW }

func (r *stakeRepo) Create(ctx context.Context, stake *staking.StakeRecord) error {
	st, unlock := r.u.current()
	defer unlock()
	st.stakes[stake.ID] = *stake
	return nil
}

func (r *stakeRepo) Get(ctx context.Context, id uuid.UUID) (*staking.StakeRecord, error) {
	st, unlock := r.u.current()
	defer unlock()
	rec, ok := st.stakes[id]
	if !ok {
		return nil, staking.ErrStakeNotFound
	}
	return &rec, nil
}

func (r *stakeRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*staking.StakeRecord, error) {
	return r.list(func(s *staking.StakeRecord) bool { return s.UserID == userID })
}

func (r *stakeRepo) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*staking.StakeRecord, error) {
	return r.list(func(s *staking.StakeRecord) bool {
		return s.UserID == userID && s.Status == staking.StakeActive
	})
}

func (r *stakeRepo) ListActive(ctx context.Context) ([]*staking.StakeRecord, error) {
	return r.list(func(s *staking.StakeRecord) bool { return s.Status == staking.StakeActive })
}

func (r *stakeRepo) list(keep func(*staking.StakeRecord) bool) ([]*staking.StakeRecord, error) {
	st, unlock := r.u.current()
	defer unlock()
	var out []*staking.StakeRecord
	for _, rec := range st.stakes {
		if keep(&rec) {
			s := rec
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r *stakeRepo) ApplyAccrual(
	ctx context.Context,
	id uuid.UUID,
	expectedLastYieldAt time.Time,
	update repository.StakeAccrualUpdate,
) (bool, error) {
	st, unlock := r.u.current()
	defer unlock()
	rec, ok := st.stakes[id]
	if !ok {
		return false, staking.ErrStakeNotFound
	}
	if !rec.LastYieldAt.Equal(expectedLastYieldAt) {
		return false, nil
	}
	rec.Status = update.Status
	rec.TotalYieldAccrued = update.TotalYieldAccrued
	rec.LastYieldAt = update.LastYieldAt
	st.stakes[id] = rec
	return true, nil
}
