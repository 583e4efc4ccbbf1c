package catalog

import (
	"context"

	"github.com/google/uuid"
	types "github.com/quildacademy/quild-backend/internal/domain"
	"github.com/quildacademy/quild-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type PhaseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, phases []*types.Phase) ([]*types.Phase, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]*types.Phase, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Phase, error)
	DeleteAll(ctx context.Context, tx *gorm.DB) error
}

type phaseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPhaseRepo(db *gorm.DB, baseLog *logger.Logger) PhaseRepo {
	repoLog := baseLog.With("repo", "PhaseRepo")
	return &phaseRepo{db: db, log: repoLog}
}

func (r *phaseRepo) Create(ctx context.Context, tx *gorm.DB, phases []*types.Phase) ([]*types.Phase, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(phases) == 0 {
		return []*types.Phase{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&phases).Error; err != nil {
		return nil, err
	}
	return phases, nil
}

func (r *phaseRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*types.Phase, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Phase
	if err := transaction.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *phaseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Phase, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Phase
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Order("sort_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *phaseRepo) DeleteAll(ctx context.Context, tx *gorm.DB) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Where("1 = 1").Delete(&types.Phase{}).Error
}
