// Package ledger implements the ledger repository on gorm. The sufficiency
// check and the decrement happen in one UPDATE, so two concurrent swaps can
// never both pass against a stale balance.
package ledger

import (
	"context"
	"errors"

	"github.com/amirasaad/tokenx/infra/repository/model"
	"github.com/amirasaad/tokenx/pkg/domain/exchange"
	"github.com/amirasaad/tokenx/pkg/repository"
	"github.com/amirasaad/tokenx/pkg/token"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct {
	db *gorm.DB
}

// New creates a ledger repository using the provided *gorm.DB session.
func New(db *gorm.DB) repository.LedgerRepository {
	return &repo{db: db}
}

func (r *repo) Balance(ctx context.Context, userID uuid.UUID, symbol token.Symbol) (decimal.Decimal, error) {
	var bal model.Balance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, symbol.String()).
		First(&bal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return bal.Amount, nil
}

func (r *repo) Balances(ctx context.Context, userID uuid.UUID) (map[token.Symbol]decimal.Decimal, error) {
	var rows []model.Balance
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[token.Symbol]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[token.Symbol(row.Token)] = row.Amount
	}
	return out, nil
}

func (r *repo) Credit(ctx context.Context, userID uuid.UUID, symbol token.Symbol, amount decimal.Decimal) error {
	if err := token.PositiveAmount(amount); err != nil {
		return err
	}
	bal := model.Balance{UserID: userID, Token: symbol.String(), Amount: amount}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "token"}},
		DoUpdates: clause.Assignments(map[string]any{
			"amount": gorm.Expr("balances.amount + ?", amount),
		}),
	}).Create(&bal).Error
}

// Debit is a compare-and-decrement: the WHERE clause guards sufficiency and
// the UPDATE applies the decrement in the same statement.
func (r *repo) Debit(ctx context.Context, userID uuid.UUID, symbol token.Symbol, amount decimal.Decimal) error {
	if err := token.PositiveAmount(amount); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&model.Balance{}).
		Where("user_id = ? AND token = ? AND amount >= ?", userID, symbol.String(), amount).
		Update("amount", gorm.Expr("amount - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return exchange.ErrInsufficientBalance
	}
	return nil
}
