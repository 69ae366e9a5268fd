// Package swap implements the swap executor: it validates and performs a
// single conversion between two tokens for one account, enforcing
// eligibility, balance sufficiency and rate limits, then commits the ledger
// mutation and the transaction record atomically.
package swap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/tokenx/pkg/config"
	"github.com/amirasaad/tokenx/pkg/domain/common"
	"github.com/amirasaad/tokenx/pkg/domain/exchange"
	"github.com/amirasaad/tokenx/pkg/eventbus"
	"github.com/amirasaad/tokenx/pkg/oracle"
	"github.com/amirasaad/tokenx/pkg/provider"
	"github.com/amirasaad/tokenx/pkg/repository"
	"github.com/amirasaad/tokenx/pkg/token"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Result is returned to the caller after a successful swap.
type Result struct {
	SwapID     uuid.UUID
	FromToken  token.Symbol
	ToToken    token.Symbol
	FromAmount decimal.Decimal
	ToAmount   decimal.Decimal
	Rate       decimal.Decimal
	Fee        decimal.Decimal
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the service clock. Tests use this to pin time.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service executes swaps.
type Service struct {
	uow         repository.UnitOfWork
	oracle      *oracle.Oracle
	eligibility provider.EligibilityProvider
	bus         eventbus.Bus
	cfg         *config.Swap
	logger      *slog.Logger
	now         func() time.Time
}

// New creates a swap Service from the dependency bundle.
func New(deps config.Deps, opts ...Option) *Service {
	s := &Service{
		uow:         deps.Uow,
		oracle:      deps.Oracle,
		eligibility: deps.Eligibility,
		bus:         deps.EventBus,
		cfg:         deps.Config.Swap,
		logger:      deps.Logger.With("service", "swap"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SwapTokens validates and executes one swap. Validation failures are
// detected before any mutation and returned immediately; the balance debit,
// credit and transaction record commit in a single atomic unit.
func (s *Service) SwapTokens(
	ctx context.Context,
	userID uuid.UUID,
	from, to token.Symbol,
	amount decimal.Decimal,
) (*Result, error) {
	logger := s.logger.With("userID", userID, "from", from, "to", to, "amount", amount.String())

	if err := s.validateArgs(userID, from, to, amount); err != nil {
		return nil, err
	}
	if err := s.checkEligibility(ctx, userID); err != nil {
		logger.Warn("swap rejected", "error", err)
		return nil, err
	}
	if err := s.checkPair(from, to, amount); err != nil {
		return nil, err
	}
	if !s.cfg.Enabled {
		return nil, exchange.ErrSwapsDisabled
	}
	if err := s.checkDailyLimits(ctx, userID); err != nil {
		logger.Warn("swap rejected", "error", err)
		return nil, err
	}

	quote, err := s.oracle.EstimateOutput(from, to, amount)
	if err != nil {
		return nil, err
	}

	now := s.now()
	record := exchange.NewSwapTransaction(userID, *quote, now)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		ledger, err := uow.LedgerRepository()
		if err != nil {
			return err
		}
		// Compare-and-decrement: the sufficiency check and the debit are one
		// atomic step inside this transaction.
		if err := ledger.Debit(ctx, userID, from, amount); err != nil {
			return err
		}
		if err := ledger.Credit(ctx, userID, to, quote.OutputAmount); err != nil {
			return err
		}
		swaps, err := uow.SwapRepository()
		if err != nil {
			return err
		}
		return swaps.Create(ctx, record)
	})
	if err != nil {
		if errors.Is(err, exchange.ErrInsufficientBalance) {
			return nil, err
		}
		s.recordFailure(ctx, userID, *quote, now)
		return nil, fmt.Errorf("%w: swap commit: %w", common.ErrInternal, err)
	}

	s.oracle.RecordSwap(from, to, amount)
	if err := s.bus.Publish(ctx, exchange.SwapExecutedEvent{
		SwapID:     record.ID,
		UserID:     userID,
		FromToken:  from,
		ToToken:    to,
		FromAmount: amount,
		ToAmount:   quote.OutputAmount,
		OccurredAt: now,
	}); err != nil {
		logger.Error("failed to publish swap event", "error", err)
	}

	logger.Info("swap executed",
		"swapID", record.ID,
		"toAmount", quote.OutputAmount.String(),
		"fee", quote.Fee.String(),
	)
	return &Result{
		SwapID:     record.ID,
		FromToken:  from,
		ToToken:    to,
		FromAmount: amount,
		ToAmount:   quote.OutputAmount,
		Rate:       quote.Rate,
		Fee:        quote.Fee,
	}, nil
}

func (s *Service) validateArgs(userID uuid.UUID, from, to token.Symbol, amount decimal.Decimal) error {
	if userID == uuid.Nil {
		return fmt.Errorf("%w: user id is required", common.ErrInvalidArgument)
	}
	if !from.IsValid() || !to.IsValid() {
		return fmt.Errorf("%w: %w", common.ErrInvalidArgument, token.ErrInvalidSymbol)
	}
	if err := token.PositiveAmount(amount); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidArgument, err)
	}
	if from == to {
		return exchange.ErrSameToken
	}
	return nil
}

func (s *Service) checkEligibility(ctx context.Context, userID uuid.UUID) error {
	score, err := s.eligibility.Score(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: eligibility lookup: %w", common.ErrInternal, err)
	}
	if score < s.cfg.MinScore {
		return exchange.ErrEligibilityTooLow
	}
	return nil
}

func (s *Service) checkPair(from, to token.Symbol, amount decimal.Decimal) error {
	if _, ok := s.oracle.GetRate(from, to); !ok {
		return exchange.ErrPairUnavailable
	}
	if !s.oracle.IsValidSwap(from, to, amount) {
		return exchange.ErrAmountOutOfBounds
	}
	return nil
}

// checkDailyLimits counts completed swaps inside the rolling window. The
// counts run outside the mutation transaction, so concurrent swaps may
// overshoot the limit slightly; the design accepts that over serializing all
// swaps through a global lock.
func (s *Service) checkDailyLimits(ctx context.Context, userID uuid.UUID) error {
	since := s.now().Add(-s.cfg.Window)
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		swaps, err := uow.SwapRepository()
		if err != nil {
			return fmt.Errorf("%w: %w", common.ErrInternal, err)
		}
		userCount, err := swaps.CountUserSince(ctx, userID, since)
		if err != nil {
			return fmt.Errorf("%w: swap count: %w", common.ErrInternal, err)
		}
		if userCount >= s.cfg.DailyLimitPerUser {
			return exchange.ErrDailyUserLimit
		}
		globalCount, err := swaps.CountAllSince(ctx, since)
		if err != nil {
			return fmt.Errorf("%w: swap count: %w", common.ErrInternal, err)
		}
		if globalCount >= s.cfg.DailyLimit {
			return exchange.ErrDailyGlobalLimit
		}
		return nil
	})
}

// recordFailure appends a failed swap record after a commit failure so the
// validated-but-failed attempt stays auditable. Best effort: its own error is
// only logged.
func (s *Service) recordFailure(ctx context.Context, userID uuid.UUID, q exchange.Quote, at time.Time) {
	record := exchange.NewSwapTransaction(userID, q, at)
	record.Status = exchange.SwapFailed
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		swaps, err := uow.SwapRepository()
		if err != nil {
			return err
		}
		return swaps.Create(ctx, record)
	})
	if err != nil {
		s.logger.Error("failed to record failed swap", "userID", userID, "error", err)
	}
}
