// Package stake implements the stake record repository on gorm. Yield
// settlement is a guarded UPDATE keyed on the stored last_yield_at, so a
// concurrent settlement can never double-credit.
package stake

import (
	"context"
	"errors"
	"time"

	"github.com/amirasaad/tokenx/infra/repository/model"
	"github.com/amirasaad/tokenx/pkg/domain/staking"
	"github.com/amirasaad/tokenx/pkg/repository"
	"github.com/amirasaad/tokenx/pkg/token"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

// New creates a stake repository using the provided *gorm.DB session.
func New(db *gorm.DB) repository.StakeRepository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, s *staking.StakeRecord) error {
	return r.db.WithContext(ctx).Create(toModel(s)).Error
}

func (r *repo) Get(ctx context.Context, id uuid.UUID) (*staking.StakeRecord, error) {
	var row model.StakeRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, staking.ErrStakeNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomain(&row), nil
}

func (r *repo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*staking.StakeRecord, error) {
	return r.find(ctx, "user_id = ?", userID)
}

func (r *repo) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*staking.StakeRecord, error) {
	return r.find(ctx, "user_id = ? AND status = ?", userID, string(staking.StakeActive))
}

func (r *repo) ListActive(ctx context.Context) ([]*staking.StakeRecord, error) {
	return r.find(ctx, "status = ?", string(staking.StakeActive))
}

func (r *repo) ApplyAccrual(
	ctx context.Context,
	id uuid.UUID,
	expectedLastYieldAt time.Time,
	update repository.StakeAccrualUpdate,
) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.StakeRecord{}).
		Where("id = ? AND last_yield_at = ?", id, expectedLastYieldAt).
		Updates(map[string]any{
			"status":              string(update.Status),
			"total_yield_accrued": update.TotalYieldAccrued,
			"last_yield_at":       update.LastYieldAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) find(ctx context.Context, query string, args ...any) ([]*staking.StakeRecord, error) {
	var rows []model.StakeRecord
	if err := r.db.WithContext(ctx).Where(query, args...).Order("start_date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*staking.StakeRecord, 0, len(rows))
	for i := range rows {
		out = append(out, toDomain(&rows[i]))
	}
	return out, nil
}

func toModel(s *staking.StakeRecord) *model.StakeRecord {
	return &model.StakeRecord{
		ID:                s.ID,
		UserID:            s.UserID,
		TokenType:         s.TokenType.String(),
		Amount:            s.Amount,
		YieldToken:        s.YieldToken.String(),
		YieldRate:         s.YieldRate,
		LockPeriodDays:    s.LockPeriodDays,
		StartDate:         s.StartDate,
		EndDate:           s.EndDate,
		TotalYieldAccrued: s.TotalYieldAccrued,
		LastYieldAt:       s.LastYieldAt,
		Status:            string(s.Status),
	}
}

func toDomain(row *model.StakeRecord) *staking.StakeRecord {
	return &staking.StakeRecord{
		ID:                row.ID,
		UserID:            row.UserID,
		TokenType:         token.Symbol(row.TokenType),
		Amount:            row.Amount,
		YieldToken:        token.Symbol(row.YieldToken),
		YieldRate:         row.YieldRate,
		LockPeriodDays:    row.LockPeriodDays,
		StartDate:         row.StartDate,
		EndDate:           row.EndDate,
		TotalYieldAccrued: row.TotalYieldAccrued,
		LastYieldAt:       row.LastYieldAt,
		Status:            staking.StakeStatus(row.Status),
	}
}
