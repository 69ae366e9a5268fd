package history_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/tokenx/infra/repository/memory"
	"github.com/amirasaad/tokenx/pkg/config"
	"github.com/amirasaad/tokenx/pkg/domain/exchange"
	"github.com/amirasaad/tokenx/pkg/domain/staking"
	"github.com/amirasaad/tokenx/pkg/repository"
	historysvc "github.com/amirasaad/tokenx/pkg/service/history"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*historysvc.Service, *memory.UoW) {
	t.Helper()
	uow := memory.NewUoW()
	svc := historysvc.New(config.Deps{
		Uow:    uow,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return svc, uow
}

func seedSwap(t *testing.T, uow *memory.UoW, userID uuid.UUID, at time.Time) *exchange.SwapTransaction {
	t.Helper()
	record := exchange.NewSwapTransaction(userID, exchange.Quote{
		FromToken:    "OBX",
		ToToken:      "STX",
		InputAmount:  decimal.NewFromInt(10),
		OutputAmount: decimal.RequireFromString("23.76"),
		Fee:          decimal.RequireFromString("0.1"),
		Rate:         decimal.RequireFromString("2.4"),
	}, at)
	err := uow.Do(context.Background(), func(u repository.UnitOfWork) error {
		swaps, err := u.SwapRepository()
		if err != nil {
			return err
		}
		return swaps.Create(context.Background(), record)
	})
	require.NoError(t, err)
	return record
}

func TestListSwaps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, uow := newService(t)
	userID := uuid.New()
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	oldest := seedSwap(t, uow, userID, start)
	newest := seedSwap(t, uow, userID, start.Add(time.Hour))
	seedSwap(t, uow, uuid.New(), start.Add(2*time.Hour)) // someone else's

	t.Run("newest first, own records only", func(t *testing.T) {
		swaps, err := svc.ListSwaps(ctx, userID, 0)
		require.NoError(t, err)
		require.Len(t, swaps, 2)
		assert.Equal(t, newest.ID, swaps[0].ID)
		assert.Equal(t, oldest.ID, swaps[1].ID)
	})

	t.Run("limit caps the page", func(t *testing.T) {
		swaps, err := svc.ListSwaps(ctx, userID, 1)
		require.NoError(t, err)
		require.Len(t, swaps, 1)
		assert.Equal(t, newest.ID, swaps[0].ID)
	})

	t.Run("nil user rejected", func(t *testing.T) {
		_, err := svc.ListSwaps(ctx, uuid.Nil, 0)
		assert.Error(t, err)
	})
}

func TestListStakes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, uow := newService(t)
	userID := uuid.New()
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	opt := staking.StakingOption{
		TokenType:      "OBX",
		YieldToken:     "STX",
		YieldRate:      decimal.RequireFromString("0.08"),
		LockPeriodDays: 7,
		MinAmount:      decimal.NewFromInt(10),
		MaxAmount:      decimal.NewFromInt(10000),
	}
	withdrawn := staking.NewStakeRecord(userID, opt, decimal.NewFromInt(100), start)
	withdrawn.Status = staking.StakeWithdrawn
	active := staking.NewStakeRecord(userID, opt, decimal.NewFromInt(50), start.Add(time.Hour))

	err := uow.Do(ctx, func(u repository.UnitOfWork) error {
		stakes, err := u.StakeRepository()
		if err != nil {
			return err
		}
		if err := stakes.Create(ctx, withdrawn); err != nil {
			return err
		}
		return stakes.Create(ctx, active)
	})
	require.NoError(t, err)

	// History returns every status, oldest first.
	records, err := svc.ListStakes(ctx, userID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, withdrawn.ID, records[0].ID)
	assert.Equal(t, active.ID, records[1].ID)
}

func TestBalances(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, uow := newService(t)
	userID := uuid.New()

	uow.SeedBalance(userID, "OBX", decimal.NewFromInt(40))
	uow.SeedBalance(userID, "STX", decimal.RequireFromString("23.76"))

	balances, err := svc.Balances(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"OBX": "40", "STX": "23.76"}, balances)

	empty, err := svc.Balances(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}
