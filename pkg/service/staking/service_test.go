package staking_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/tokenx/infra/eventbus"
	"github.com/amirasaad/tokenx/infra/repository/memory"
	"github.com/amirasaad/tokenx/pkg/config"
	domain "github.com/amirasaad/tokenx/pkg/domain/staking"
	"github.com/amirasaad/tokenx/pkg/repository"
	stakingsvc "github.com/amirasaad/tokenx/pkg/service/staking"
	"github.com/amirasaad/tokenx/pkg/token"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const operatorKey = "test-operator-key"

type fixture struct {
	svc   *stakingsvc.Service
	uow   *memory.UoW
	bus   *eventbus.MemoryEventBus
	clock time.Time
}

func defaultOptions() []domain.StakingOption {
	return []domain.StakingOption{
		{
			TokenType:      "OBX",
			YieldToken:     "STX",
			YieldRate:      decimal.RequireFromString("0.08"),
			LockPeriodDays: 7,
			MinAmount:      decimal.NewFromInt(10),
			MaxAmount:      decimal.NewFromInt(10000),
		},
		{
			TokenType:      "STX",
			YieldToken:     "STX",
			YieldRate:      decimal.RequireFromString("0.15"),
			LockPeriodDays: 90,
			MinAmount:      decimal.NewFromInt(100),
			MaxAmount:      decimal.NewFromInt(100000),
		},
	}
}

func newFixture(t *testing.T, mutate func(*config.Staking)) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	stakingCfg := &config.Staking{Enabled: true, OperatorKey: operatorKey}
	if mutate != nil {
		mutate(stakingCfg)
	}

	f := &fixture{
		uow:   memory.NewUoW(),
		bus:   eventbus.NewWithMemory(logger),
		clock: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	deps := config.Deps{
		Uow:            f.uow,
		StakingOptions: defaultOptions(),
		EventBus:       f.bus,
		Logger:         logger,
		Config:         &config.App{Staking: stakingCfg},
	}
	f.svc = stakingsvc.New(deps, stakingsvc.WithClock(func() time.Time { return f.clock }))
	return f
}

func (f *fixture) balance(t *testing.T, userID uuid.UUID, symbol token.Symbol) string {
	t.Helper()
	var out decimal.Decimal
	err := f.uow.Do(context.Background(), func(uow repository.UnitOfWork) error {
		ledger, err := uow.LedgerRepository()
		if err != nil {
			return err
		}
		b, err := ledger.Balance(context.Background(), userID, symbol)
		out = b
		return err
	})
	require.NoError(t, err)
	return out.String()
}

func TestStakeTokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("opening a stake locks the principal", func(t *testing.T) {
		f := newFixture(t, nil)
		userID := uuid.New()
		f.uow.SeedBalance(userID, "OBX", decimal.NewFromInt(150))

		stake, err := f.svc.StakeTokens(ctx, userID, "OBX", decimal.NewFromInt(100), "STX", 7)
		require.NoError(t, err)
		assert.Equal(t, domain.StakeActive, stake.Status)
		assert.Equal(t, f.clock.AddDate(0, 0, 7), stake.EndDate)
		assert.Equal(t, "50", f.balance(t, userID, "OBX"))

		published := f.bus.Published()
		require.Len(t, published, 1)
		_, ok := published[0].(domain.StakeOpenedEvent)
		assert.True(t, ok)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		f := newFixture(t, nil)
		userID := uuid.New()
		f.uow.SeedBalance(userID, "OBX", decimal.NewFromInt(50))

		_, err := f.svc.StakeTokens(ctx, userID, "OBX", decimal.NewFromInt(100), "STX", 7)
		assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
		assert.Equal(t, "50", f.balance(t, userID, "OBX"))
	})

	t.Run("no matching option", func(t *testing.T) {
		f := newFixture(t, nil)
		userID := uuid.New()
		f.uow.SeedBalance(userID, "OBX", decimal.NewFromInt(500))

		_, err := f.svc.StakeTokens(ctx, userID, "OBX", decimal.NewFromInt(100), "STX", 14)
		assert.ErrorIs(t, err, domain.ErrNoMatchingOption)
		_, err = f.svc.StakeTokens(ctx, userID, "OBX", decimal.NewFromInt(100), "OBX", 7)
		assert.ErrorIs(t, err, domain.ErrNoMatchingOption)
	})

	t.Run("amount outside option bounds", func(t *testing.T) {
		f := newFixture(t, nil)
		userID := uuid.New()
		f.uow.SeedBalance(userID, "OBX", decimal.NewFromInt(20000))

		_, err := f.svc.StakeTokens(ctx, userID, "OBX", decimal.NewFromInt(5), "STX", 7)
		assert.ErrorIs(t, err, domain.ErrAmountOutOfBounds)
		_, err = f.svc.StakeTokens(ctx, userID, "OBX", decimal.NewFromInt(10001), "STX", 7)
		assert.ErrorIs(t, err, domain.ErrAmountOutOfBounds)

		// Bounds are inclusive.
		_, err = f.svc.StakeTokens(ctx, userID, "OBX", decimal.NewFromInt(10), "STX", 7)
		assert.NoError(t, err)
		_, err = f.svc.StakeTokens(ctx, userID, "OBX", decimal.NewFromInt(10000), "STX", 7)
		assert.NoError(t, err)
	})

	t.Run("disabled flag blocks staking", func(t *testing.T) {
		f := newFixture(t, func(cfg *config.Staking) { cfg.Enabled = false })
		userID := uuid.New()
		f.uow.SeedBalance(userID, "OBX", decimal.NewFromInt(150))

		_, err := f.svc.StakeTokens(ctx, userID, "OBX", decimal.NewFromInt(100), "STX", 7)
		assert.ErrorIs(t, err, domain.ErrStakingDisabled)
	})
}

func TestGetActiveStakes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil)
	userID := uuid.New()
	f.uow.SeedBalance(userID, "OBX", decimal.NewFromInt(200))

	stake, err := f.svc.StakeTokens(ctx, userID, "OBX", decimal.NewFromInt(100), "STX", 7)
	require.NoError(t, err)

	// 3.65 days in: projected yield 0.08, unpenalized.
	f.clock = f.clock.Add(87*time.Hour + 36*time.Minute)
	projections, err := f.svc.GetActiveStakes(ctx, userID)
	require.NoError(t, err)
	require.Len(t, projections, 1)
	assert.Equal(t, stake.ID, projections[0].Stake.ID)
	assert.Equal(t, "0.08", projections[0].ProjectedYield.String())

	// Another user sees nothing.
	projections, err = f.svc.GetActiveStakes(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, projections)
}

func TestWithdrawStake(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("early withdrawal pays principal and halved yield", func(t *testing.T) {
		f := newFixture(t, nil)
		userID := uuid.New()
		f.uow.SeedBalance(userID, "OBX", decimal.NewFromInt(100))

		stake, err := f.svc.StakeTokens(ctx, userID, "OBX", decimal.NewFromInt(100), "STX", 7)
		require.NoError(t, err)

		f.clock = f.clock.Add(87*time.Hour + 36*time.Minute) // 3.65 days
		result, err := f.svc.WithdrawStake(ctx, userID, stake.ID)
		require.NoError(t, err)
		assert.True(t, result.EarlyWithdrawal)
		assert.Equal(t, "100", result.ReturnedAmount.String())
		assert.Equal(t, "0.04", result.YieldAmount.String())
		assert.Equal(t, token.Symbol("STX"), result.YieldToken)

		assert.Equal(t, "100", f.balance(t, userID, "OBX"))
		assert.Equal(t, "0.04", f.balance(t, userID, "STX"))
	})

	t.Run("on-time withdrawal pays full yield", func(t *testing.T) {
		f := newFixture(t, nil)
		userID := uuid.New()
		f.uow.SeedBalance(userID, "OBX", decimal.NewFromInt(100))

		stake, err := f.svc.StakeTokens(ctx, userID, "OBX", decimal.NewFromInt(100), "STX", 7)
		require.NoError(t, err)

		f.clock = f.clock.Add(175*time.Hour + 12*time.Minute) // 7.3 days
		result, err := f.svc.WithdrawStake(ctx, userID, stake.ID)
		require.NoError(t, err)
		assert.False(t, result.EarlyWithdrawal)
		assert.Equal(t, "0.16", result.YieldAmount.String())
	})

	t.Run("stake owned by someone else", func(t *testing.T) {
		f := newFixture(t, nil)
		owner := uuid.New()
		f.uow.SeedBalance(owner, "OBX", decimal.NewFromInt(100))
		stake, err := f.svc.StakeTokens(ctx, owner, "OBX", decimal.NewFromInt(100), "STX", 7)
		require.NoError(t, err)

		_, err = f.svc.WithdrawStake(ctx, uuid.New(), stake.ID)
		assert.ErrorIs(t, err, domain.ErrStakeNotOwned)
	})

	t.Run("unknown stake", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.svc.WithdrawStake(ctx, uuid.New(), uuid.New())
		assert.ErrorIs(t, err, domain.ErrStakeNotFound)
	})

	t.Run("double withdrawal conflicts", func(t *testing.T) {
		f := newFixture(t, nil)
		userID := uuid.New()
		f.uow.SeedBalance(userID, "OBX", decimal.NewFromInt(100))
		stake, err := f.svc.StakeTokens(ctx, userID, "OBX", decimal.NewFromInt(100), "STX", 7)
		require.NoError(t, err)

		f.clock = f.clock.Add(8 * 24 * time.Hour)
		_, err = f.svc.WithdrawStake(ctx, userID, stake.ID)
		require.NoError(t, err)

		_, err = f.svc.WithdrawStake(ctx, userID, stake.ID)
		assert.ErrorIs(t, err, domain.ErrStakeAlreadyWithdrawn)
		assert.Equal(t, "100", f.balance(t, userID, "OBX"), "principal is not paid twice")
	})

	t.Run("withdraw after maturity processing", func(t *testing.T) {
		f := newFixture(t, nil)
		userID := uuid.New()
		f.uow.SeedBalance(userID, "OBX", decimal.NewFromInt(100))
		stake, err := f.svc.StakeTokens(ctx, userID, "OBX", decimal.NewFromInt(100), "STX", 7)
		require.NoError(t, err)

		// Bulk processing transitions the matured stake to completed and
		// settles its yield; withdrawal then follows the on-time path.
		f.clock = f.clock.Add(175*time.Hour + 12*time.Minute) // 7.3 days
		_, err = f.svc.ProcessYields(ctx, operatorKey)
		require.NoError(t, err)

		result, err := f.svc.WithdrawStake(ctx, userID, stake.ID)
		require.NoError(t, err)
		assert.False(t, result.EarlyWithdrawal)
		assert.Equal(t, "0.16", result.YieldAmount.String())
		assert.Equal(t, "100", f.balance(t, userID, "OBX"))
		assert.Equal(t, "0.16", f.balance(t, userID, "STX"))
	})
}

func TestProcessYields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("requires the operator key", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.svc.ProcessYields(ctx, "wrong-key")
		assert.ErrorIs(t, err, domain.ErrNotOperator)
		_, err = f.svc.ProcessYields(ctx, "")
		assert.ErrorIs(t, err, domain.ErrNotOperator)
	})

	t.Run("empty configured key disables processing", func(t *testing.T) {
		f := newFixture(t, func(cfg *config.Staking) { cfg.OperatorKey = "" })
		_, err := f.svc.ProcessYields(ctx, "")
		assert.ErrorIs(t, err, domain.ErrNotOperator)
	})

	t.Run("settles a full day of yield once", func(t *testing.T) {
		f := newFixture(t, nil)
		userID := uuid.New()
		f.uow.SeedBalance(userID, "STX", decimal.NewFromInt(1000))
		stake, err := f.svc.StakeTokens(ctx, userID, "STX", decimal.NewFromInt(1000), "STX", 90)
		require.NoError(t, err)

		f.clock = f.clock.Add(2 * 24 * time.Hour)
		result, err := f.svc.ProcessYields(ctx, operatorKey)
		require.NoError(t, err)
		assert.Equal(t, 1, result.ProcessedCount)
		assert.Zero(t, result.FailedCount)

		// A second run at the same instant is a no-op: the first settlement
		// advanced LastYieldAt.
		result, err = f.svc.ProcessYields(ctx, operatorKey)
		require.NoError(t, err)
		assert.Zero(t, result.ProcessedCount)

		projections, err := f.svc.GetActiveStakes(ctx, userID)
		require.NoError(t, err)
		require.Len(t, projections, 1)
		// 1000 * 0.15 * 2/365 settled once.
		expected := decimal.NewFromInt(1000).
			Mul(decimal.RequireFromString("0.15")).
			Mul(decimal.NewFromInt(2)).
			Div(decimal.NewFromInt(365))
		assert.True(t, expected.Equal(projections[0].Stake.TotalYieldAccrued))
		assert.Equal(t, stake.ID, projections[0].Stake.ID)
	})

	t.Run("sub-day stakes are skipped", func(t *testing.T) {
		f := newFixture(t, nil)
		userID := uuid.New()
		f.uow.SeedBalance(userID, "OBX", decimal.NewFromInt(100))
		_, err := f.svc.StakeTokens(ctx, userID, "OBX", decimal.NewFromInt(100), "STX", 7)
		require.NoError(t, err)

		f.clock = f.clock.Add(6 * time.Hour)
		result, err := f.svc.ProcessYields(ctx, operatorKey)
		require.NoError(t, err)
		assert.Zero(t, result.ProcessedCount)
		assert.Zero(t, result.FailedCount)
	})

	t.Run("matured stakes transition to completed without payout", func(t *testing.T) {
		f := newFixture(t, nil)
		userID := uuid.New()
		f.uow.SeedBalance(userID, "OBX", decimal.NewFromInt(100))
		_, err := f.svc.StakeTokens(ctx, userID, "OBX", decimal.NewFromInt(100), "STX", 7)
		require.NoError(t, err)

		f.clock = f.clock.Add(8 * 24 * time.Hour)
		result, err := f.svc.ProcessYields(ctx, operatorKey)
		require.NoError(t, err)
		assert.Equal(t, 1, result.ProcessedCount)

		// Funds stay locked until the holder withdraws.
		assert.Equal(t, "0", f.balance(t, userID, "OBX"))
		assert.Equal(t, "0", f.balance(t, userID, "STX"))

		// The stake no longer shows as active.
		projections, err := f.svc.GetActiveStakes(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, projections)

		published := f.bus.Published()
		require.NotEmpty(t, published)
		last, ok := published[len(published)-1].(domain.YieldsProcessedEvent)
		require.True(t, ok)
		assert.Equal(t, 1, last.ProcessedCount)
	})
}
