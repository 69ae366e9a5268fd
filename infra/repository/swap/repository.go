// Package swap implements the append-only swap log repository on gorm.
package swap

import (
	"context"
	"errors"
	"time"

	"github.com/amirasaad/tokenx/infra/repository/model"
	"github.com/amirasaad/tokenx/pkg/domain/exchange"
	"github.com/amirasaad/tokenx/pkg/repository"
	"github.com/amirasaad/tokenx/pkg/token"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

// New creates a swap repository using the provided *gorm.DB session.
func New(db *gorm.DB) repository.SwapRepository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, tx *exchange.SwapTransaction) error {
	return r.db.WithContext(ctx).Create(toModel(tx)).Error
}

func (r *repo) Get(ctx context.Context, id uuid.UUID) (*exchange.SwapTransaction, error) {
	var row model.SwapTransaction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, exchange.ErrSwapNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomain(&row), nil
}

func (r *repo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*exchange.SwapTransaction, error) {
	var rows []model.SwapTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*exchange.SwapTransaction, 0, len(rows))
	for i := range rows {
		out = append(out, toDomain(&rows[i]))
	}
	return out, nil
}

func (r *repo) CountUserSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.SwapTransaction{}).
		Where("user_id = ? AND status = ? AND created_at >= ?",
			userID, string(exchange.SwapCompleted), since).
		Count(&n).Error
	return n, err
}

func (r *repo) CountAllSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.SwapTransaction{}).
		Where("status = ? AND created_at >= ?", string(exchange.SwapCompleted), since).
		Count(&n).Error
	return n, err
}

func toModel(tx *exchange.SwapTransaction) *model.SwapTransaction {
	return &model.SwapTransaction{
		ID:         tx.ID,
		UserID:     tx.UserID,
		FromToken:  tx.FromToken.String(),
		ToToken:    tx.ToToken.String(),
		FromAmount: tx.FromAmount,
		ToAmount:   tx.ToAmount,
		Rate:       tx.Rate,
		Fee:        tx.Fee,
		Status:     string(tx.Status),
		CreatedAt:  tx.CreatedAt,
	}
}

func toDomain(row *model.SwapTransaction) *exchange.SwapTransaction {
	return &exchange.SwapTransaction{
		ID:         row.ID,
		UserID:     row.UserID,
		FromToken:  token.Symbol(row.FromToken),
		ToToken:    token.Symbol(row.ToToken),
		FromAmount: row.FromAmount,
		ToAmount:   row.ToAmount,
		Rate:       row.Rate,
		Fee:        row.Fee,
		Status:     exchange.SwapStatus(row.Status),
		CreatedAt:  row.CreatedAt,
	}
}
