package swap_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/tokenx/infra/eventbus"
	"github.com/amirasaad/tokenx/infra/provider"
	"github.com/amirasaad/tokenx/infra/repository/memory"
	"github.com/amirasaad/tokenx/pkg/config"
	"github.com/amirasaad/tokenx/pkg/domain/exchange"
	"github.com/amirasaad/tokenx/pkg/oracle"
	"github.com/amirasaad/tokenx/pkg/repository"
	swapsvc "github.com/amirasaad/tokenx/pkg/service/swap"
	"github.com/amirasaad/tokenx/pkg/token"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc *swapsvc.Service
	uow *memory.UoW
	bus *eventbus.MemoryEventBus
}

func newFixture(t *testing.T, mutate func(*config.Swap), opts ...swapsvc.Option) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	swapCfg := &config.Swap{
		Enabled:           true,
		MinScore:          50,
		DailyLimit:        1000,
		DailyLimitPerUser: 10,
		Window:            24 * time.Hour,
		MaxStepPerTrade:   decimal.RequireFromString("0.05"),
		ReversionFactor:   decimal.RequireFromString("0.1"),
		VolumeSmoothing:   decimal.RequireFromString("0.2"),
	}
	if mutate != nil {
		mutate(swapCfg)
	}

	o, err := oracle.New(logger, oracle.DefaultConfig(), exchange.TokenPair{
		FromToken: "OBX",
		ToToken:   "STX",
		Rate:      decimal.RequireFromString("2.4"),
		Fee:       decimal.RequireFromString("0.01"),
		MinAmount: decimal.NewFromInt(1),
		MaxAmount: decimal.NewFromInt(1000),
		IsActive:  true,
	})
	require.NoError(t, err)

	uow := memory.NewUoW()
	bus := eventbus.NewWithMemory(logger)
	deps := config.Deps{
		Uow:         uow,
		Oracle:      o,
		Eligibility: provider.NewStaticEligibility(75),
		EventBus:    bus,
		Logger:      logger,
		Config:      &config.App{Swap: swapCfg},
	}
	return &fixture{svc: swapsvc.New(deps, opts...), uow: uow, bus: bus}
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

func TestSwapTokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("successful swap conserves and converts", func(t *testing.T) {
		f := newFixture(t, nil)
		userID := uuid.New()
		f.uow.SeedBalance(userID, "OBX", decimal.NewFromInt(50))

		result, err := f.svc.SwapTokens(ctx, userID, "OBX", "STX", decimal.NewFromInt(10))
		require.NoError(t, err)
		assert.Equal(t, "23.76", result.ToAmount.String())
		assert.Equal(t, "0.1", result.Fee.String())
		assert.Equal(t, "2.4", result.Rate.String())

		assert.Equal(t, "40", f.balance(t, userID, "OBX"))
		assert.Equal(t, "23.76", f.balance(t, userID, "STX"))

		published := f.bus.Published()
		require.Len(t, published, 1)
		event, ok := published[0].(exchange.SwapExecutedEvent)
		require.True(t, ok)
		assert.Equal(t, result.SwapID, event.SwapID)
	})

	t.Run("insufficient balance leaves ledger untouched", func(t *testing.T) {
		f := newFixture(t, nil)
		userID := uuid.New()
		f.uow.SeedBalance(userID, "OBX", decimal.NewFromInt(5))

		_, err := f.svc.SwapTokens(ctx, userID, "OBX", "STX", decimal.NewFromInt(10))
		assert.ErrorIs(t, err, exchange.ErrInsufficientBalance)
		assert.Equal(t, "5", f.balance(t, userID, "OBX"))
		assert.Equal(t, "0", f.balance(t, userID, "STX"))
		assert.Empty(t, f.bus.Published())
	})

	t.Run("same token rejected", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.svc.SwapTokens(ctx, uuid.New(), "OBX", "OBX", decimal.NewFromInt(10))
		assert.ErrorIs(t, err, exchange.ErrSameToken)
	})

	t.Run("nil user rejected", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.svc.SwapTokens(ctx, uuid.Nil, "OBX", "STX", decimal.NewFromInt(10))
		assert.Error(t, err)
	})

	t.Run("unknown pair rejected", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.svc.SwapTokens(ctx, uuid.New(), "STX", "OBX", decimal.NewFromInt(10))
		assert.ErrorIs(t, err, exchange.ErrPairUnavailable)
	})

	t.Run("amount outside pair bounds rejected", func(t *testing.T) {
		f := newFixture(t, nil)
		userID := uuid.New()
		f.uow.SeedBalance(userID, "OBX", decimal.NewFromInt(5000))

		_, err := f.svc.SwapTokens(ctx, userID, "OBX", "STX", decimal.RequireFromString("0.5"))
		assert.ErrorIs(t, err, exchange.ErrAmountOutOfBounds)
		_, err = f.svc.SwapTokens(ctx, userID, "OBX", "STX", decimal.NewFromInt(1001))
		assert.ErrorIs(t, err, exchange.ErrAmountOutOfBounds)

		// Bounds are inclusive.
		_, err = f.svc.SwapTokens(ctx, userID, "OBX", "STX", decimal.NewFromInt(1))
		assert.NoError(t, err)
		_, err = f.svc.SwapTokens(ctx, userID, "OBX", "STX", decimal.NewFromInt(1000))
		assert.NoError(t, err)
	})

	t.Run("disabled flag blocks swaps", func(t *testing.T) {
		f := newFixture(t, func(cfg *config.Swap) { cfg.Enabled = false })
		userID := uuid.New()
		f.uow.SeedBalance(userID, "OBX", decimal.NewFromInt(50))

		_, err := f.svc.SwapTokens(ctx, userID, "OBX", "STX", decimal.NewFromInt(10))
		assert.ErrorIs(t, err, exchange.ErrSwapsDisabled)
	})

	t.Run("eligibility below threshold rejected", func(t *testing.T) {
		f := newFixture(t, func(cfg *config.Swap) { cfg.MinScore = 90 })
		userID := uuid.New()
		f.uow.SeedBalance(userID, "OBX", decimal.NewFromInt(50))

		_, err := f.svc.SwapTokens(ctx, userID, "OBX", "STX", decimal.NewFromInt(10))
		assert.ErrorIs(t, err, exchange.ErrEligibilityTooLow)
		assert.Equal(t, "50", f.balance(t, userID, "OBX"))
	})

	t.Run("per-user daily limit", func(t *testing.T) {
		f := newFixture(t, func(cfg *config.Swap) { cfg.DailyLimitPerUser = 3 })
		limited := uuid.New()
		other := uuid.New()
		f.uow.SeedBalance(limited, "OBX", decimal.NewFromInt(1000))
		f.uow.SeedBalance(other, "OBX", decimal.NewFromInt(1000))

		for i := 0; i < 3; i++ {
			_, err := f.svc.SwapTokens(ctx, limited, "OBX", "STX", decimal.NewFromInt(10))
			require.NoError(t, err)
		}
		_, err := f.svc.SwapTokens(ctx, limited, "OBX", "STX", decimal.NewFromInt(10))
		assert.ErrorIs(t, err, exchange.ErrDailyUserLimit)

		// The limit is per account, not global.
		_, err = f.svc.SwapTokens(ctx, other, "OBX", "STX", decimal.NewFromInt(10))
		assert.NoError(t, err)
	})

	t.Run("global daily limit", func(t *testing.T) {
		f := newFixture(t, func(cfg *config.Swap) { cfg.DailyLimit = 2 })
		first := uuid.New()
		second := uuid.New()
		f.uow.SeedBalance(first, "OBX", decimal.NewFromInt(100))
		f.uow.SeedBalance(second, "OBX", decimal.NewFromInt(100))

		_, err := f.svc.SwapTokens(ctx, first, "OBX", "STX", decimal.NewFromInt(10))
		require.NoError(t, err)
		_, err = f.svc.SwapTokens(ctx, first, "OBX", "STX", decimal.NewFromInt(10))
		require.NoError(t, err)

		_, err = f.svc.SwapTokens(ctx, second, "OBX", "STX", decimal.NewFromInt(10))
		assert.ErrorIs(t, err, exchange.ErrDailyGlobalLimit)
	})

	t.Run("swaps outside the window do not count", func(t *testing.T) {
		current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		f := newFixture(t,
			func(cfg *config.Swap) { cfg.DailyLimitPerUser = 1 },
			swapsvc.WithClock(func() time.Time { return current }),
		)
		userID := uuid.New()
		f.uow.SeedBalance(userID, "OBX", decimal.NewFromInt(100))

		_, err := f.svc.SwapTokens(ctx, userID, "OBX", "STX", decimal.NewFromInt(10))
		require.NoError(t, err)
		_, err = f.svc.SwapTokens(ctx, userID, "OBX", "STX", decimal.NewFromInt(10))
		assert.ErrorIs(t, err, exchange.ErrDailyUserLimit)

		// A day plus a minute later the old swap has aged out.
		current = current.Add(24*time.Hour + time.Minute)
		_, err = f.svc.SwapTokens(ctx, userID, "OBX", "STX", decimal.NewFromInt(10))
		assert.NoError(t, err)
	})

	t.Run("repeated swaps drift the rate upward", func(t *testing.T) {
		f := newFixture(t, nil)
		userID := uuid.New()
		f.uow.SeedBalance(userID, "OBX", decimal.NewFromInt(1000))

		first, err := f.svc.SwapTokens(ctx, userID, "OBX", "STX", decimal.NewFromInt(100))
		require.NoError(t, err)
		second, err := f.svc.SwapTokens(ctx, userID, "OBX", "STX", decimal.NewFromInt(100))
		require.NoError(t, err)
		assert.True(t, second.Rate.GreaterThan(first.Rate))
	})
}
