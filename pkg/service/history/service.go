// Package history is the read path over the append-only swap and stake logs.
package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirasaad/tokenx/pkg/config"
	"github.com/amirasaad/tokenx/pkg/domain/common"
	"github.com/amirasaad/tokenx/pkg/domain/exchange"
	"github.com/amirasaad/tokenx/pkg/domain/staking"
	"github.com/amirasaad/tokenx/pkg/repository"
	"github.com/google/uuid"
)

// DefaultLimit bounds swap history listings when the caller does not ask for
// a specific page size.
const DefaultLimit = 50

// Service reads transaction and stake history.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a history Service from the dependency bundle.
func New(deps config.Deps) *Service {
	return &Service{
		uow:    deps.Uow,
		logger: deps.Logger.With("service", "history"),
	}
}

// ListSwaps returns the account's swap transactions, newest first.
func (s *Service) ListSwaps(ctx context.Context, userID uuid.UUID, limit int) ([]*exchange.SwapTransaction, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", common.ErrInvalidArgument)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	var out []*exchange.SwapTransaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		swaps, err := uow.SwapRepository()
		if err != nil {
			return err
		}
		out, err = swaps.ListByUser(ctx, userID, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list swaps: %w", common.ErrInternal, err)
	}
	return out, nil
}

// ListStakes returns every stake the account ever opened, regardless of
// status.
func (s *Service) ListStakes(ctx context.Context, userID uuid.UUID) ([]*staking.StakeRecord, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", common.ErrInvalidArgument)
	}
	var out []*staking.StakeRecord
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		stakes, err := uow.StakeRepository()
		if err != nil {
			return err
		}
		out, err = stakes.ListByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list stakes: %w", common.ErrInternal, err)
	}
	return out, nil
}

// Balances returns a snapshot of the account's balance map.
func (s *Service) Balances(ctx context.Context, userID uuid.UUID) (map[string]string, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", common.ErrInvalidArgument)
	}
	out := map[string]string{}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		ledger, err := uow.LedgerRepository()
		if err != nil {
			return err
		}
		balances, err := ledger.Balances(ctx, userID)
		if err != nil {
			return err
		}
		for sym, amount := range balances {
			out[sym.String()] = amount.String()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: balances: %w", common.ErrInternal, err)
	}
	return out, nil
}
