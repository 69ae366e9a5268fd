// Package oracle maintains the set of tradable token pairs and their current
// rates. All pair state is owned by the Oracle and protected by a single
// lock; callers only ever see copies.
//
// After each committed trade the pair's rate is nudged to reflect realized
// demand. The nudge is monotonic in trade size, bounded per call by a
// configured ceiling, and every call first pulls the rate back toward its
// configured base so drift stays mean-reverting.
package oracle

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/amirasaad/tokenx/pkg/domain/exchange"
	"github.com/amirasaad/tokenx/pkg/token"
	"github.com/shopspring/decimal"
)

// Config tunes the demand-nudge curve.
type Config struct {
	// MaxStepPerTrade caps the relative rate move a single trade can cause
	// (e.g. 0.05 means at most +5% per call).
	MaxStepPerTrade decimal.Decimal
	// ReversionFactor is the fraction of the distance to the base rate
	// removed before each nudge (0 disables reversion, 1 snaps to base).
	ReversionFactor decimal.Decimal
	// VolumeSmoothing is the EWMA weight of the newest trade when updating
	// the recent-volume estimate.
	VolumeSmoothing decimal.Decimal
}

// DefaultConfig returns conservative nudge tuning.
func DefaultConfig() Config {
	return Config{
		MaxStepPerTrade: decimal.RequireFromString("0.05"),
		ReversionFactor: decimal.RequireFromString("0.1"),
		VolumeSmoothing: decimal.RequireFromString("0.2"),
	}
}

type pairKey struct {
	from token.Symbol
	to   token.Symbol
}

type pairState struct {
	pair exchange.TokenPair
	// ewmaVolume estimates recent traded volume for this pair.
	ewmaVolume decimal.Decimal
}

// Oracle prices conversions between token denominations.
type Oracle struct {
	mu     sync.RWMutex
	pairs  map[pairKey]*pairState
	cfg    Config
	logger *slog.Logger
}

// New creates an Oracle seeded with the given pairs. Every pair must satisfy
// its invariants.
func New(logger *slog.Logger, cfg Config, pairs ...exchange.TokenPair) (*Oracle, error) {
	o := &Oracle{
		pairs:  make(map[pairKey]*pairState, len(pairs)),
		cfg:    cfg,
		logger: logger.With("component", "oracle"),
	}
	for _, p := range pairs {
		if err := o.AddPair(p); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// AddPair registers a directed pair. The reverse direction is an independent
// entry and is not created implicitly.
func (o *Oracle) AddPair(p exchange.TokenPair) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.BaseRate.Sign() <= 0 {
		p.BaseRate = p.Rate
	}
	key := pairKey{from: p.FromToken, to: p.ToToken}
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.pairs[key]; exists {
		return fmt.Errorf("%w: pair %s->%s already registered",
			exchange.ErrInvalidPair, p.FromToken, p.ToToken)
	}
	o.pairs[key] = &pairState{pair: p, ewmaVolume: decimal.Zero}
	return nil
}

// SetActive toggles a pair without deleting it.
func (o *Oracle) SetActive(from, to token.Symbol, active bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	st, ok := o.pairs[pairKey{from: from, to: to}]
	if !ok {
		return exchange.ErrPairUnavailable
	}
	st.pair.IsActive = active
	return nil
}

// GetRate returns the current rate for the ordered pair, or false when the
// pair is missing or inactive.
func (o *Oracle) GetRate(from, to token.Symbol) (decimal.Decimal, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	st, ok := o.activePair(from, to)
	if !ok {
		return decimal.Decimal{}, false
	}
	return st.pair.Rate, true
}

// EstimateOutput prices a prospective swap without mutating any state:
// fee = amount * pair.fee, output = (amount - fee) * pair.rate.
func (o *Oracle) EstimateOutput(from, to token.Symbol, amount decimal.Decimal) (*exchange.Quote, error) {
	if err := token.PositiveAmount(amount); err != nil {
		return nil, err
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	st, ok := o.activePair(from, to)
	if !ok {
		return nil, exchange.ErrPairUnavailable
	}
	fee := amount.Mul(st.pair.Fee)
	output := amount.Sub(fee).Mul(st.pair.Rate)
	return &exchange.Quote{
		FromToken:    from,
		ToToken:      to,
		InputAmount:  amount,
		OutputAmount: output,
		Fee:          fee,
		Rate:         st.pair.Rate,
	}, nil
}

// IsValidSwap reports whether an active pair exists for the direction, the
// tokens differ, and amount lies within the pair's bounds (inclusive).
func (o *Oracle) IsValidSwap(from, to token.Symbol, amount decimal.Decimal) bool {
	if from == to {
		return false
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	st, ok := o.activePair(from, to)
	if !ok {
		return false
	}
	return amount.GreaterThanOrEqual(st.pair.MinAmount) &&
		amount.LessThanOrEqual(st.pair.MaxAmount)
}

// RecordSwap nudges the pair's rate after a committed trade. It must never be
// called speculatively.
func (o *Oracle) RecordSwap(from, to token.Symbol, amount decimal.Decimal) {
	if amount.Sign() <= 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	st, ok := o.pairs[pairKey{from: from, to: to}]
	if !ok {
		return
	}

	// Pull back toward the base rate first so repeated trading cannot drift
	// the rate without bound.
	one := decimal.NewFromInt(1)
	diff := st.pair.Rate.Sub(st.pair.BaseRate)
	st.pair.Rate = st.pair.BaseRate.Add(diff.Mul(one.Sub(o.cfg.ReversionFactor)))

	// amount/(amount+ewma) is in [0,1), so the step is monotonic in trade
	// size and strictly below MaxStepPerTrade.
	pressure := amount.Div(amount.Add(st.ewmaVolume))
	step := o.cfg.MaxStepPerTrade.Mul(pressure)
	st.pair.Rate = st.pair.Rate.Mul(one.Add(step))

	st.ewmaVolume = st.ewmaVolume.Mul(one.Sub(o.cfg.VolumeSmoothing)).
		Add(amount.Mul(o.cfg.VolumeSmoothing))

	o.logger.Debug("recorded swap",
		"from", from, "to", to,
		"amount", amount.String(),
		"rate", st.pair.Rate.String(),
		"ewma_volume", st.ewmaVolume.String(),
	)
}

// AllPairs returns a snapshot of every registered pair, active or not,
// ordered by direction for stable output.
func (o *Oracle) AllPairs() []exchange.TokenPair {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]exchange.TokenPair, 0, len(o.pairs))
	for _, st := range o.pairs {
		out = append(out, st.pair)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FromToken != out[j].FromToken {
			return out[i].FromToken < out[j].FromToken
		}
		return out[i].ToToken < out[j].ToToken
	})
	return out
}

// activePair must be called with at least a read lock held.
func (o *Oracle) activePair(from, to token.Symbol) (*pairState, bool) {
	st, ok := o.pairs[pairKey{from: from, to: to}]
	if !ok || !st.pair.IsActive {
		return nil, false
	}
	return st, true
}
