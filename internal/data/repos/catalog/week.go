package catalog

import (
	"context"

	"github.com/google/uuid"
	types "github.com/quildacademy/quild-backend/internal/domain"
	"github.com/quildacademy/quild-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type WeekRepo interface {
	Create(ctx context.Context, tx *gorm.DB, weeks []*types.Week) ([]*types.Week, error)
	// ListActive returns active weeks ordered by week number. Empty phaseIDs means all phases.
	ListActive(ctx context.Context, tx *gorm.DB, phaseIDs []uuid.UUID) ([]*types.Week, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Week, error)
	DeleteAll(ctx context.Context, tx *gorm.DB) error
}

type weekRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWeekRepo(db *gorm.DB, baseLog *logger.Logger) WeekRepo {
	repoLog := baseLog.With("repo", "WeekRepo")
	return &weekRepo{db: db, log: repoLog}
}

func (r *weekRepo) Create(ctx context.Context, tx *gorm.DB, weeks []*types.Week) ([]*types.Week, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(weeks) == 0 {
		return []*types.Week{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&weeks).Error; err != nil {
		return nil, err
	}
	return weeks, nil
}

func (r *weekRepo) ListActive(ctx context.Context, tx *gorm.DB, phaseIDs []uuid.UUID) ([]*types.Week, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Where("is_active = ?", true)
	if len(phaseIDs) > 0 {
		q = q.Where("phase_id IN ?", phaseIDs)
	}
	var results []*types.Week
	if err := q.Order("week_number ASC").Order("created_at ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *weekRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Week, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Week
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *weekRepo) DeleteAll(ctx context.Context, tx *gorm.DB) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Where("1 = 1").Delete(&types.Week{}).Error
}
