package progress

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quildacademy/quild-backend/internal/data/aggregates"
	types "github.com/quildacademy/quild-backend/internal/domain"
	"github.com/quildacademy/quild-backend/internal/platform/dbctx"
	"github.com/quildacademy/quild-backend/internal/platform/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const ledgerTable = "user_progress"

type LedgerRepo interface {
	// GetByUserID returns nil without error when the user has no ledger yet.
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Ledger, error)
	// CreateIfAbsent inserts l unless the user already has a ledger, and returns
	// the stored row either way.
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, l *types.Ledger) (*types.Ledger, error)
	// Save writes every mutable field of l guarded by l.Version. It reports false
	// when another writer got there first; on success l.Version is advanced.
	Save(ctx context.Context, tx *gorm.DB, l *types.Ledger) (bool, error)
	// Top returns ledgers of existing users ranked by points, then streak, then
	// creation order.
	Top(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Ledger, error)
}

type ledgerRepo struct {
	db    *gorm.DB
	log   *logger.Logger
	guard aggregates.CASGuard
}

func NewLedgerRepo(db *gorm.DB, baseLog *logger.Logger) LedgerRepo {
	repoLog := baseLog.With("repo", "LedgerRepo")
	return &ledgerRepo{db: db, log: repoLog, guard: aggregates.NewCASGuard(db)}
}

func (r *ledgerRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Ledger, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var l types.Ledger
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Take(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ledgerRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, l *types.Ledger) (*types.Ledger, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(l).Error; err != nil {
		return nil, err
	}
	stored, err := r.GetByUserID(ctx, transaction, l.UserID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return stored, nil
}

func (r *ledgerRepo) Save(ctx context.Context, tx *gorm.DB, l *types.Ledger) (bool, error) {
	now := time.Now()
	ok, err := r.guard.UpdateByVersion(dbctx.Context{Ctx: ctx, Tx: tx}, ledgerTable, l.ID, l.Version, map[string]any{
		"current_phase":       l.CurrentPhase,
		"current_week":        l.CurrentWeek,
		"current_lesson":      l.CurrentLesson,
		"completed_phases":    l.CompletedPhases,
		"completed_weeks":     l.CompletedWeeks,
		"completed_lessons":   l.CompletedLessons,
		"total_points":        l.TotalPoints,
		"current_streak":      l.CurrentStreak,
		"longest_streak":      l.LongestStreak,
		"last_activity_date":  l.LastActivityDate,
		"total_time_spent":    l.TotalTimeSpent,
		"achievements":        l.Achievements,
		"completed_resources": l.CompletedResources,
		"updated_at":          now,
	})
	if err != nil {
		return false, err
	}
	if ok {
		l.Version++
		l.UpdatedAt = now
	} else {
		r.log.Debug("stale ledger write rejected", "ledger_id", l.ID, "version", l.Version)
	}
	return ok, nil
}

func (r *ledgerRepo) Top(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Ledger, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	// The join drops ledgers without a user before the limit applies.
	q := transaction.WithContext(ctx).
		Table(ledgerTable).
		Select(ledgerTable + ".*").
		Joins("JOIN users ON users.id = " + ledgerTable + ".user_id").
		Order(ledgerTable + ".total_points DESC").
		Order(ledgerTable + ".current_streak DESC").
		Order(ledgerTable + ".created_at ASC").
		Order(ledgerTable + ".id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var results []*types.Ledger
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
