package services

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/quildacademy/quild-backend/internal/data/aggregates"
	"github.com/quildacademy/quild-backend/internal/data/repos"
	types "github.com/quildacademy/quild-backend/internal/domain"
	domainagg "github.com/quildacademy/quild-backend/internal/domain/aggregates"
	"github.com/quildacademy/quild-backend/internal/modules/progression"
	"github.com/quildacademy/quild-backend/internal/platform/logger"
)

// LessonView is a lesson with its parents and the caller's completion flag.
type LessonView struct {
	Lesson    *types.Lesson `json:"lesson"`
	Week      *types.Week   `json:"week"`
	Phase     *types.Phase  `json:"phase"`
	Completed bool          `json:"completed"`
}

type CatalogService interface {
	ListPhases(ctx context.Context) ([]*types.Phase, error)
	// ListWeeks lists active weeks of active phases, restricted to phaseID when
	// non-nil.
	ListWeeks(ctx context.Context, phaseID *uuid.UUID) ([]*types.Week, error)
	// ListLessons lists active lessons of a week, of a phase's active weeks, or all.
	ListLessons(ctx context.Context, weekID, phaseID *uuid.UUID) ([]*types.Lesson, error)
	// GetLesson is NotFound unless the lesson, its week and its phase are active.
	GetLesson(ctx context.Context, userID, lessonID uuid.UUID) (*LessonView, error)
	// Snapshot indexes the active curriculum for the progression engine.
	Snapshot(ctx context.Context, tx *gorm.DB) (*progression.Catalog, error)
}

type catalogService struct {
	log     *logger.Logger
	phases  repos.PhaseRepo
	weeks   repos.WeekRepo
	lessons repos.LessonRepo
	ledgers repos.LedgerRepo
}

func NewCatalogService(log *logger.Logger, phases repos.PhaseRepo, weeks repos.WeekRepo, lessons repos.LessonRepo, ledgers repos.LedgerRepo) CatalogService {
	return &catalogService{
		log:     log.With("service", "CatalogService"),
		phases:  phases,
		weeks:   weeks,
		lessons: lessons,
		ledgers: ledgers,
	}
}

func (s *catalogService) ListPhases(ctx context.Context) ([]*types.Phase, error) {
	out, err := s.phases.ListActive(ctx, nil)
	if err != nil {
		return nil, aggregates.MapError("catalog.list_phases", err)
	}
	return out, nil
}

func (s *catalogService) ListWeeks(ctx context.Context, phaseID *uuid.UUID) ([]*types.Week, error) {
	const op = "catalog.list_weeks"
	phases, err := s.phases.ListActive(ctx, nil)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	// Weeks of inactive phases are hidden even when active themselves.
	filter := make([]uuid.UUID, 0, len(phases))
	for _, p := range phases {
		if phaseID == nil || p.ID == *phaseID {
			filter = append(filter, p.ID)
		}
	}
	if len(filter) == 0 {
		return []*types.Week{}, nil
	}
	out, err := s.weeks.ListActive(ctx, nil, filter)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return out, nil
}

func (s *catalogService) ListLessons(ctx context.Context, weekID, phaseID *uuid.UUID) ([]*types.Lesson, error) {
	const op = "catalog.list_lessons"
	var weekIDs []uuid.UUID
	switch {
	case weekID != nil:
		weekIDs = []uuid.UUID{*weekID}
	case phaseID != nil:
		weeks, err := s.ListWeeks(ctx, phaseID)
		if err != nil {
			return nil, err
		}
		if len(weeks) == 0 {
			return []*types.Lesson{}, nil
		}
		for _, w := range weeks {
			weekIDs = append(weekIDs, w.ID)
		}
	}
	out, err := s.lessons.ListActive(ctx, nil, weekIDs)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return out, nil
}

func (s *catalogService) GetLesson(ctx context.Context, userID, lessonID uuid.UUID) (*LessonView, error) {
	const op = "catalog.get_lesson"
	lessons, err := s.lessons.GetByIDs(ctx, nil, []uuid.UUID{lessonID})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if len(lessons) == 0 || !lessons[0].IsActive {
		return nil, domainagg.NotFound(op, "lesson not found")
	}
	view := &LessonView{Lesson: lessons[0]}

	// A lesson is only reachable while its week and phase are active too.
	weeks, err := s.weeks.GetByIDs(ctx, nil, []uuid.UUID{view.Lesson.WeekID})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if len(weeks) == 0 || !weeks[0].IsActive {
		return nil, domainagg.NotFound(op, "lesson not found")
	}
	view.Week = weeks[0]
	phases, err := s.phases.GetByIDs(ctx, nil, []uuid.UUID{view.Week.PhaseID})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if len(phases) == 0 || !phases[0].IsActive {
		return nil, domainagg.NotFound(op, "lesson not found")
	}
	view.Phase = phases[0]

	if userID != uuid.Nil {
		ledger, err := s.ledgers.GetByUserID(ctx, nil, userID)
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		view.Completed = ledger != nil && ledger.HasLesson(lessonID)
	}
	return view, nil
}

func (s *catalogService) Snapshot(ctx context.Context, tx *gorm.DB) (*progression.Catalog, error) {
	const op = "catalog.snapshot"
	if tx != nil {
		// A transaction pins one connection; read sequentially.
		phases, err := s.phases.ListActive(ctx, tx)
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		weeks, err := s.weeks.ListActive(ctx, tx, nil)
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		lessons, err := s.lessons.ListActive(ctx, tx, nil)
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		return progression.NewCatalog(phases, weeks, lessons), nil
	}

	var (
		phases  []*types.Phase
		weeks   []*types.Week
		lessons []*types.Lesson
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		phases, err = s.phases.ListActive(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		weeks, err = s.weeks.ListActive(gctx, nil, nil)
		return err
	})
	g.Go(func() (err error) {
		lessons, err = s.lessons.ListActive(gctx, nil, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return progression.NewCatalog(phases, weeks, lessons), nil
}
