// Package app assembles the services from the dependency bundle.
package app

import (
	"github.com/amirasaad/tokenx/pkg/config"
	"github.com/amirasaad/tokenx/pkg/service/history"
	"github.com/amirasaad/tokenx/pkg/service/staking"
	"github.com/amirasaad/tokenx/pkg/service/swap"
)

// App holds the constructed services and their shared dependencies.
type App struct {
	Deps           *config.Deps
	Config         *config.App
	SwapService    *swap.Service
	StakingService *staking.Service
	HistoryService *history.Service
}

// New builds the application from an initialized dependency bundle.
func New(deps *config.Deps) *App {
	return &App{
		Deps:           deps,
		Config:         deps.Config,
		SwapService:    swap.New(*deps),
		StakingService: staking.New(*deps),
		HistoryService: history.New(*deps),
	}
}
