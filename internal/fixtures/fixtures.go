// Package fixtures loads the seed reference data for the engine: the token
// pair menu and the staking options. The embedded files ship sensible
// defaults; deployments override them with their own files.
package fixtures

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/amirasaad/tokenx/pkg/domain/exchange"
	"github.com/amirasaad/tokenx/pkg/domain/staking"
	"github.com/amirasaad/tokenx/pkg/token"
	"github.com/shopspring/decimal"
)

//go:embed pairs.json
var pairsJSON []byte

//go:embed staking_options.json
var stakingOptionsJSON []byte

type pairFixture struct {
	FromToken string          `json:"from_token"`
	ToToken   string          `json:"to_token"`
	Rate      decimal.Decimal `json:"rate"`
	Fee       decimal.Decimal `json:"fee"`
	MinAmount decimal.Decimal `json:"min_amount"`
	MaxAmount decimal.Decimal `json:"max_amount"`
	IsActive  bool            `json:"is_active"`
}

type optionFixture struct {
	TokenType      string          `json:"token_type"`
	YieldToken     string          `json:"yield_token"`
	YieldRate      decimal.Decimal `json:"yield_rate"`
	LockPeriodDays int             `json:"lock_period_days"`
	MinAmount      decimal.Decimal `json:"min_amount"`
	MaxAmount      decimal.Decimal `json:"max_amount"`
}

// LoadTokenPairs reads pairs from path, or the embedded defaults when path
// is empty. Every pair is validated.
func LoadTokenPairs(path string) ([]exchange.TokenPair, error) {
	data, err := read(path, pairsJSON)
	if err != nil {
		return nil, err
	}
	var raw []pairFixture
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse token pairs: %w", err)
	}
	out := make([]exchange.TokenPair, 0, len(raw))
	for _, f := range raw {
		p := exchange.TokenPair{
			FromToken: token.Symbol(f.FromToken),
			ToToken:   token.Symbol(f.ToToken),
			Rate:      f.Rate,
			BaseRate:  f.Rate,
			Fee:       f.Fee,
			MinAmount: f.MinAmount,
			MaxAmount: f.MaxAmount,
			IsActive:  f.IsActive,
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// LoadStakingOptions reads staking options from path, or the embedded
// defaults when path is empty.
func LoadStakingOptions(path string) ([]staking.StakingOption, error) {
	data, err := read(path, stakingOptionsJSON)
	if err != nil {
		return nil, err
	}
	var raw []optionFixture
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse staking options: %w", err)
	}
	out := make([]staking.StakingOption, 0, len(raw))
	for _, f := range raw {
		opt := staking.StakingOption{
			TokenType:      token.Symbol(f.TokenType),
			YieldToken:     token.Symbol(f.YieldToken),
			YieldRate:      f.YieldRate,
			LockPeriodDays: f.LockPeriodDays,
			MinAmount:      f.MinAmount,
			MaxAmount:      f.MaxAmount,
		}
		if !opt.TokenType.IsValid() || !opt.YieldToken.IsValid() {
			return nil, fmt.Errorf("staking option %s/%s: %w",
				f.TokenType, f.YieldToken, token.ErrInvalidSymbol)
		}
		if opt.LockPeriodDays <= 0 {
			return nil, fmt.Errorf("staking option %s: lock period must be positive", f.TokenType)
		}
		if opt.YieldRate.Sign() < 0 {
			return nil, fmt.Errorf("staking option %s: yield rate must not be negative", f.TokenType)
		}
		if opt.MinAmount.GreaterThan(opt.MaxAmount) {
			return nil, fmt.Errorf("staking option %s: min amount exceeds max amount", f.TokenType)
		}
		out = append(out, opt)
	}
	return out, nil
}

func read(path string, embedded []byte) ([]byte, error) {
	if path == "" {
		return embedded, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture file: %w", err)
	}
	return data, nil
}
