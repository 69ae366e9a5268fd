// Package testutils builds a fully wired application on the in-memory
// ledger for handler tests.
package testutils

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/tokenx/infra/eventbus"
	"github.com/amirasaad/tokenx/infra/provider"
	"github.com/amirasaad/tokenx/infra/repository/memory"
	"github.com/amirasaad/tokenx/pkg/app"
	"github.com/amirasaad/tokenx/pkg/config"
	"github.com/amirasaad/tokenx/pkg/domain/exchange"
	"github.com/amirasaad/tokenx/pkg/domain/staking"
	"github.com/amirasaad/tokenx/pkg/oracle"
	"github.com/amirasaad/tokenx/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// OperatorKey is the operator key wired into test applications.
const OperatorKey = "test-operator-key"

// TestApp bundles the fiber app with the in-memory store backing it.
type TestApp struct {
	App *fiber.App
	Uow *memory.UoW
	Bus *eventbus.MemoryEventBus
}

// NewTestApp wires the full HTTP surface over the in-memory ledger. mutate,
// when non-nil, adjusts the configuration before services are built.
func NewTestApp(t *testing.T, mutate func(*config.App)) *TestApp {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.App{
		Env: "test",
		Swap: &config.Swap{
			Enabled:           true,
			MinScore:          50,
			DailyLimit:        1000,
			DailyLimitPerUser: 10,
			Window:            24 * time.Hour,
			MaxStepPerTrade:   decimal.RequireFromString("0.05"),
			ReversionFactor:   decimal.RequireFromString("0.1"),
			VolumeSmoothing:   decimal.RequireFromString("0.2"),
		},
		Staking:   &config.Staking{Enabled: true, OperatorKey: OperatorKey},
		RateLimit: &config.RateLimit{MaxRequests: 10000, Window: time.Minute},
	}
	if mutate != nil {
		mutate(cfg)
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
	deps := &config.Deps{
		Uow:    uow,
		Oracle: o,
		StakingOptions: []staking.StakingOption{{
			TokenType:      "OBX",
			YieldToken:     "STX",
			YieldRate:      decimal.RequireFromString("0.08"),
			LockPeriodDays: 7,
			MinAmount:      decimal.NewFromInt(10),
			MaxAmount:      decimal.NewFromInt(10000),
		}},
		Eligibility: provider.NewStaticEligibility(75),
		EventBus:    bus,
		Logger:      logger,
		Config:      cfg,
	}
	return &TestApp{
		App: webapi.SetupApp(app.New(deps)),
		Uow: uow,
		Bus: bus,
	}
}
