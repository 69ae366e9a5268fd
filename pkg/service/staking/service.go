// Package staking implements the staking manager: opening time-locked
// stakes, projecting and settling yield, withdrawals with the early-exit
// penalty, and privileged bulk yield processing.
package staking

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/tokenx/pkg/config"
	"github.com/amirasaad/tokenx/pkg/domain/common"
	domain "github.com/amirasaad/tokenx/pkg/domain/staking"
	"github.com/amirasaad/tokenx/pkg/eventbus"
	"github.com/amirasaad/tokenx/pkg/repository"
	"github.com/amirasaad/tokenx/pkg/token"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StakeProjection is a read-only view of an active stake with its projected
// yield. The stored record is not mutated.
type StakeProjection struct {
	Stake          *domain.StakeRecord
	ProjectedYield decimal.Decimal
}

// WithdrawResult is returned after a stake withdrawal.
type WithdrawResult struct {
	StakeID         uuid.UUID
	ReturnedAmount  decimal.Decimal
	YieldAmount     decimal.Decimal
	YieldToken      token.Symbol
	EarlyWithdrawal bool
}

// ProcessResult summarizes one bulk yield-processing run.
type ProcessResult struct {
	ProcessedCount int
	FailedCount    int
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the service clock. Tests use this to pin time.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service manages stakes.
type Service struct {
	uow     repository.UnitOfWork
	options []domain.StakingOption
	bus     eventbus.Bus
	cfg     *config.Staking
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a staking Service from the dependency bundle.
func New(deps config.Deps, opts ...Option) *Service {
	s := &Service{
		uow:     deps.Uow,
		options: deps.StakingOptions,
		bus:     deps.EventBus,
		cfg:     deps.Config.Staking,
		logger:  deps.Logger.With("service", "staking"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Options returns the configured staking options menu.
func (s *Service) Options() []domain.StakingOption {
	out := make([]domain.StakingOption, len(s.options))
	copy(out, s.options)
	return out
}

// StakeTokens validates and opens a time-locked stake. The principal debit
// and the record insert commit in a single atomic transaction.
func (s *Service) StakeTokens(
	ctx context.Context,
	userID uuid.UUID,
	tokenType token.Symbol,
	amount decimal.Decimal,
	yieldToken token.Symbol,
	lockPeriodDays int,
) (*domain.StakeRecord, error) {
	logger := s.logger.With("userID", userID, "token", tokenType, "amount", amount.String())

	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", common.ErrInvalidArgument)
	}
	if !tokenType.IsValid() || !yieldToken.IsValid() {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidArgument, token.ErrInvalidSymbol)
	}
	if err := token.PositiveAmount(amount); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidArgument, err)
	}
	if !s.cfg.Enabled {
		return nil, domain.ErrStakingDisabled
	}

	// The triple must match a configured option exactly, no fuzzy matching.
	opt, ok := s.findOption(tokenType, yieldToken, lockPeriodDays)
	if !ok {
		return nil, domain.ErrNoMatchingOption
	}
	if amount.LessThan(opt.MinAmount) || amount.GreaterThan(opt.MaxAmount) {
		return nil, domain.ErrAmountOutOfBounds
	}

	now := s.now()
	stake := domain.NewStakeRecord(userID, opt, amount, now)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		ledger, err := uow.LedgerRepository()
		if err != nil {
			return err
		}
		if err := ledger.Debit(ctx, userID, tokenType, amount); err != nil {
			return err
		}
		stakes, err := uow.StakeRepository()
		if err != nil {
			return err
		}
		return stakes.Create(ctx, stake)
	})
	if err != nil {
		if errors.Is(err, common.ErrResourceExhausted) {
			return nil, domain.ErrInsufficientBalance
		}
		return nil, fmt.Errorf("%w: stake commit: %w", common.ErrInternal, err)
	}

	if err := s.bus.Publish(ctx, domain.StakeOpenedEvent{
		StakeID:    stake.ID,
		UserID:     userID,
		TokenType:  tokenType,
		Amount:     amount,
		EndDate:    stake.EndDate,
		OccurredAt: now,
	}); err != nil {
		logger.Error("failed to publish stake event", "error", err)
	}
	logger.Info("stake opened", "stakeID", stake.ID, "endDate", stake.EndDate)
	return stake, nil
}

// GetActiveStakes returns the caller's active stakes with projected yield
// (settled plus pending, unpenalized). Pure read path.
func (s *Service) GetActiveStakes(ctx context.Context, userID uuid.UUID) ([]StakeProjection, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", common.ErrInvalidArgument)
	}
	var out []StakeProjection
	now := s.now()
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		stakes, err := uow.StakeRepository()
		if err != nil {
			return err
		}
		records, err := stakes.ListActiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		out = make([]StakeProjection, 0, len(records))
		for _, r := range records {
			out = append(out, StakeProjection{
				Stake:          r,
				ProjectedYield: r.ProjectedYield(now),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list stakes: %w", common.ErrInternal, err)
	}
	return out, nil
}

// WithdrawStake returns the stake's principal and its yield to the holder's
// balances and marks the stake withdrawn, all in one atomic transaction.
// Before maturity the pending (unsettled) yield is halved; yield already
// settled is paid in full. A matured stake, whether still active or already
// transitioned to completed by the bulk processor, follows the on-time path.
func (s *Service) WithdrawStake(ctx context.Context, userID, stakeID uuid.UUID) (*WithdrawResult, error) {
	if userID == uuid.Nil || stakeID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id and stake id are required", common.ErrInvalidArgument)
	}

	var result *WithdrawResult
	now := s.now()
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		stakes, err := uow.StakeRepository()
		if err != nil {
			return err
		}
		stake, err := stakes.Get(ctx, stakeID)
		if err != nil {
			return err
		}
		if stake.UserID != userID {
			return domain.ErrStakeNotOwned
		}
		if stake.Status == domain.StakeWithdrawn {
			return domain.ErrStakeAlreadyWithdrawn
		}

		yieldAmount, early := stake.WithdrawableYield(now)
		applied, err := stakes.ApplyAccrual(ctx, stake.ID, stake.LastYieldAt, repository.StakeAccrualUpdate{
			Status:            domain.StakeWithdrawn,
			TotalYieldAccrued: yieldAmount,
			LastYieldAt:       now,
		})
		if err != nil {
			return err
		}
		if !applied {
			// A concurrent settlement or withdrawal won the guard.
			return domain.ErrStakeAlreadyWithdrawn
		}

		ledger, err := uow.LedgerRepository()
		if err != nil {
			return err
		}
		if err := ledger.Credit(ctx, userID, stake.TokenType, stake.Amount); err != nil {
			return err
		}
		if yieldAmount.Sign() > 0 {
			if err := ledger.Credit(ctx, userID, stake.YieldToken, yieldAmount); err != nil {
				return err
			}
		}
		result = &WithdrawResult{
			StakeID:         stake.ID,
			ReturnedAmount:  stake.Amount,
			YieldAmount:     yieldAmount,
			YieldToken:      stake.YieldToken,
			EarlyWithdrawal: early,
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound),
			errors.Is(err, common.ErrPermissionDenied),
			errors.Is(err, common.ErrConflict):
			return nil, err
		default:
			return nil, fmt.Errorf("%w: withdraw commit: %w", common.ErrInternal, err)
		}
	}

	if err := s.bus.Publish(ctx, domain.StakeWithdrawnEvent{
		StakeID:         result.StakeID,
		UserID:          userID,
		ReturnedAmount:  result.ReturnedAmount,
		YieldAmount:     result.YieldAmount,
		EarlyWithdrawal: result.EarlyWithdrawal,
		OccurredAt:      now,
	}); err != nil {
		s.logger.Error("failed to publish withdraw event", "error", err)
	}
	s.logger.Info("stake withdrawn",
		"stakeID", result.StakeID,
		"yield", result.YieldAmount.String(),
		"early", result.EarlyWithdrawal,
	)
	return result, nil
}

// ProcessYields scans every active stake once. Matured stakes transition to
// completed without auto-withdrawing funds; stakes with at least one full day
// since the last settlement get the full pending yield credited; sub-day
// stakes are skipped. Each stake commits independently, so one failure never
// aborts the scan. Only callers presenting the operator key may run it.
func (s *Service) ProcessYields(ctx context.Context, operatorKey string) (*ProcessResult, error) {
	if !s.authorizeOperator(operatorKey) {
		return nil, domain.ErrNotOperator
	}

	var records []*domain.StakeRecord
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		stakes, err := uow.StakeRepository()
		if err != nil {
			return err
		}
		records, err = stakes.ListActive(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list active stakes: %w", common.ErrInternal, err)
	}

	now := s.now()
	result := &ProcessResult{}
	for _, stake := range records {
		applied, err := s.processOne(ctx, stake, now)
		if err != nil {
			result.FailedCount++
			s.logger.Error("yield processing failed for stake",
				"stakeID", stake.ID, "error", err)
			continue
		}
		if applied {
			result.ProcessedCount++
		}
	}

	if err := s.bus.Publish(ctx, domain.YieldsProcessedEvent{
		ProcessedCount: result.ProcessedCount,
		FailedCount:    result.FailedCount,
		OccurredAt:     now,
	}); err != nil {
		s.logger.Error("failed to publish yields event", "error", err)
	}
	s.logger.Info("yields processed",
		"processed", result.ProcessedCount,
		"failed", result.FailedCount,
		"scanned", len(records),
	)
	return result, nil
}

var oneDay = decimal.NewFromInt(1)

// processOne settles a single stake in its own transaction. The accrual is a
// guarded read-modify-write against the stored LastYieldAt, so a concurrent
// run cannot double-credit.
func (s *Service) processOne(ctx context.Context, stake *domain.StakeRecord, now time.Time) (bool, error) {
	applied := false
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		stakes, err := uow.StakeRepository()
		if err != nil {
			return err
		}
		current, err := stakes.Get(ctx, stake.ID)
		if err != nil {
			return err
		}
		if current.Status != domain.StakeActive {
			return nil
		}

		update := repository.StakeAccrualUpdate{
			Status:      domain.StakeActive,
			LastYieldAt: now,
		}
		switch {
		case current.Matured(now):
			// Lock matured: stop accrual, funds stay claimable via withdraw.
			update.Status = domain.StakeCompleted
			update.TotalYieldAccrued = current.ProjectedYield(now)
		case current.DaysSinceLastYield(now).GreaterThanOrEqual(oneDay):
			update.TotalYieldAccrued = current.TotalYieldAccrued.Add(current.PendingYield(now))
		default:
			// Sub-day elapsed: skip to avoid yield-less churn writes.
			return nil
		}

		applied, err = stakes.ApplyAccrual(ctx, current.ID, current.LastYieldAt, update)
		return err
	})
	return applied, err
}

func (s *Service) findOption(tokenType, yieldToken token.Symbol, lockPeriodDays int) (domain.StakingOption, bool) {
	for _, opt := range s.options {
		if opt.Matches(tokenType, yieldToken, lockPeriodDays) {
			return opt, true
		}
	}
	return domain.StakingOption{}, false
}

func (s *Service) authorizeOperator(key string) bool {
	if s.cfg.OperatorKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.cfg.OperatorKey)) == 1
}
