package config

import (
	"log/slog"

	"github.com/amirasaad/tokenx/pkg/domain/staking"
	"github.com/amirasaad/tokenx/pkg/eventbus"
	"github.com/amirasaad/tokenx/pkg/oracle"
	"github.com/amirasaad/tokenx/pkg/provider"
	"github.com/amirasaad/tokenx/pkg/repository"
)

// Deps holds all infrastructure dependencies for building the app and
// services.
type Deps struct {
	Uow            repository.UnitOfWork
	Oracle         *oracle.Oracle
	Eligibility    provider.EligibilityProvider
	StakingOptions []staking.StakingOption
	EventBus       eventbus.Bus
	Logger         *slog.Logger
	Config         *App
}
