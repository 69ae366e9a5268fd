// Package repository provides the gorm-backed unit of work. Every repository
// obtained inside Do shares one database transaction, so the ledger mutation
// and the log write commit or roll back together.
package repository

import (
	"context"

	"github.com/amirasaad/tokenx/infra/repository/ledger"
	"github.com/amirasaad/tokenx/infra/repository/stake"
	"github.com/amirasaad/tokenx/infra/repository/swap"
	"github.com/amirasaad/tokenx/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides the transaction boundary and repository access in one
// abstraction over a *gorm.DB.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs fn in a database transaction, providing a UoW bound to it.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
}

// LedgerRepository implements repository.UnitOfWork.
func (u *UoW) LedgerRepository() (repository.LedgerRepository, error) {
	return ledger.New(u.session()), nil
}

// SwapRepository implements repository.UnitOfWork.
func (u *UoW) SwapRepository() (repository.SwapRepository, error) {
	return swap.New(u.session()), nil
}

// StakeRepository implements repository.UnitOfWork.
func (u *UoW) StakeRepository() (repository.StakeRepository, error) {
	return stake.New(u.session()), nil
}

// session returns the transaction handle inside Do, the base handle outside.
func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}
