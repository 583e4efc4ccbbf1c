package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/quildacademy/quild-backend/internal/data/aggregates"
	"github.com/quildacademy/quild-backend/internal/data/repos"
	types "github.com/quildacademy/quild-backend/internal/domain"
	domainagg "github.com/quildacademy/quild-backend/internal/domain/aggregates"
	"github.com/quildacademy/quild-backend/internal/domain/progress"
	"github.com/quildacademy/quild-backend/internal/modules/progression"
	"github.com/quildacademy/quild-backend/internal/platform/dbctx"
	"github.com/quildacademy/quild-backend/internal/platform/logger"
)

// maxWriteAttempts bounds re-apply loops after a stale ledger write.
const maxWriteAttempts = 3

type CompletionSummary struct {
	AlreadyCompleted bool          `json:"alreadyCompleted"`
	PointsEarned     int           `json:"pointsEarned"`
	NewTotalPoints   int           `json:"newTotalPoints"`
	NewStreak        int           `json:"newStreak"`
	NextLesson       *types.Lesson `json:"nextLesson"`
}

// ProgressView is the ledger with its cursor expanded to entities.
type ProgressView struct {
	*types.Ledger
	CurrentPhase  *types.Phase  `json:"currentPhase"`
	CurrentWeek   *types.Week   `json:"currentWeek"`
	CurrentLesson *types.Lesson `json:"currentLesson"`
}

type ProgressService interface {
	EnsureProgress(ctx context.Context, userID uuid.UUID) (*types.Ledger, error)
	CompleteLesson(ctx context.Context, userID, lessonID uuid.UUID, timeSpent int) (*CompletionSummary, error)
	GetProgress(ctx context.Context, userID uuid.UUID) (*ProgressView, error)
	// ToggleResource flips resourceID in the caller's checklist and returns the
	// course's completed resources afterwards.
	ToggleResource(ctx context.Context, userID, courseID, resourceID uuid.UUID) ([]string, error)
	GetCompletedResources(ctx context.Context, userID, courseID uuid.UUID) ([]string, error)
}

type ProgressServiceConfig struct {
	// Calendar days for streaks are counted in this location.
	StreakLocation *time.Location
	Now            func() time.Time
	// Hooks observes every ledger write; conflicts and stale retries are
	// reported per operation.
	Hooks aggregates.Hooks
}

type progressService struct {
	log         *logger.Logger
	writes      aggregates.BaseDeps
	ledgers     repos.LedgerRepo
	phases      repos.PhaseRepo
	weeks       repos.WeekRepo
	lessons     repos.LessonRepo
	courses     repos.CourseRepo
	catalog     CatalogService
	leaderboard LeaderboardService
	locker      Locker
	loc         *time.Location
	now         func() time.Time
}

func NewProgressService(
	log *logger.Logger,
	tx aggregates.TxRunner,
	ledgers repos.LedgerRepo,
	phases repos.PhaseRepo,
	weeks repos.WeekRepo,
	lessons repos.LessonRepo,
	courses repos.CourseRepo,
	catalog CatalogService,
	leaderboard LeaderboardService,
	locker Locker,
	cfg ProgressServiceConfig,
) ProgressService {
	if locker == nil {
		locker = NewLocalLocker()
	}
	loc := cfg.StreakLocation
	if loc == nil {
		loc = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	hooks := cfg.Hooks
	if hooks == nil {
		hooks = aggregates.NewLogHooks(log, 0)
	}
	return &progressService{
		log:         log.With("service", "ProgressService"),
		writes:      aggregates.BaseDeps{Runner: tx, Hooks: hooks},
		ledgers:     ledgers,
		phases:      phases,
		weeks:       weeks,
		lessons:     lessons,
		courses:     courses,
		catalog:     catalog,
		leaderboard: leaderboard,
		locker:      locker,
		loc:         loc,
		now:         now,
	}
}

func lockKey(userID uuid.UUID) string { return "progress:" + userID.String() }

// ensure loads the ledger or bootstraps it at the curriculum entry point.
func (s *progressService) ensure(dbc dbctx.Context, userID uuid.UUID) (*types.Ledger, error) {
	l, err := s.ledgers.GetByUserID(dbc.Ctx, dbc.Tx, userID)
	if err != nil || l != nil {
		return l, err
	}
	cat, err := s.catalog.Snapshot(dbc.Ctx, dbc.Tx)
	if err != nil {
		return nil, err
	}
	var phaseID, weekID, lessonID *uuid.UUID
	p, w, lesson := cat.Entry()
	if p != nil {
		phaseID = &p.ID
	}
	if w != nil {
		weekID = &w.ID
	}
	if lesson != nil {
		lessonID = &lesson.ID
	}
	created, err := s.ledgers.CreateIfAbsent(dbc.Ctx, dbc.Tx, progress.New(userID, phaseID, weekID, lessonID))
	if err != nil {
		return nil, err
	}
	s.log.Debug("progress bootstrapped", "user_id", userID, "ledger_id", created.ID)
	return created, nil
}

func (s *progressService) EnsureProgress(ctx context.Context, userID uuid.UUID) (*types.Ledger, error) {
	var out *types.Ledger
	err := aggregates.ExecuteWrite(ctx, s.writes, "progress.ensure", func(dbc dbctx.Context) error {
		l, err := s.ensure(dbc, userID)
		out = l
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// mutate runs apply against a fresh ledger under the per-user lock and writes
// it with a version check, retrying stale writes. apply returns false to skip
// the write.
func (s *progressService) mutate(ctx context.Context, op string, userID uuid.UUID, apply func(dbc dbctx.Context, l *types.Ledger) (bool, error)) error {
	unlock, err := s.locker.Lock(ctx, lockKey(userID))
	if err != nil {
		return domainagg.NewError(domainagg.CodeRetryable, op, "could not acquire progress lock", err)
	}
	defer unlock()

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		stale := false
		err := aggregates.ExecuteWrite(ctx, s.writes, op, func(dbc dbctx.Context) error {
			l, err := s.ensure(dbc, userID)
			if err != nil {
				return err
			}
			write, err := apply(dbc, l)
			if err != nil || !write {
				return err
			}
			ok, err := s.ledgers.Save(dbc.Ctx, dbc.Tx, l)
			if err != nil {
				return err
			}
			stale = !ok
			return nil
		})
		if err != nil {
			return err
		}
		if !stale {
			return nil
		}
		s.writes.Hooks.IncRetry(op)
		s.log.Warn("stale progress write, retrying", "user_id", userID, "attempt", attempt)
	}
	s.writes.Hooks.IncConflict(op)
	return domainagg.NewError(domainagg.CodeConflict, op, "progress was modified concurrently, please retry", nil)
}

func (s *progressService) CompleteLesson(ctx context.Context, userID, lessonID uuid.UUID, timeSpent int) (*CompletionSummary, error) {
	const op = "progress.complete_lesson"
	if timeSpent < 0 {
		return nil, domainagg.Validation(op, "timeSpent must not be negative")
	}
	var out *CompletionSummary
	err := s.mutate(ctx, op, userID, func(dbc dbctx.Context, l *types.Ledger) (bool, error) {
		cat, err := s.catalog.Snapshot(dbc.Ctx, dbc.Tx)
		if err != nil {
			return false, err
		}
		res, err := progression.New(cat, s.loc).Complete(l, lessonID, timeSpent, s.now())
		if err != nil {
			return false, err
		}
		out = &CompletionSummary{
			AlreadyCompleted: res.AlreadyCompleted,
			PointsEarned:     res.PointsEarned,
			NewTotalPoints:   res.NewTotalPoints,
			NewStreak:        res.NewStreak,
			NextLesson:       res.NextLesson,
		}
		if res.WeekCompleted || res.PhaseCompleted {
			s.log.Info("curriculum unit completed", "user_id", userID, "week", res.WeekCompleted, "phase", res.PhaseCompleted)
		}
		return !res.AlreadyCompleted, nil
	})
	if err != nil {
		return nil, err
	}
	if !out.AlreadyCompleted && s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx)
	}
	return out, nil
}

func (s *progressService) GetProgress(ctx context.Context, userID uuid.UUID) (*ProgressView, error) {
	const op = "progress.get"
	l, err := s.EnsureProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := &ProgressView{Ledger: l}

	g, gctx := errgroup.WithContext(ctx)
	if l.CurrentPhase != nil {
		g.Go(func() error {
			rows, err := s.phases.GetByIDs(gctx, nil, []uuid.UUID{*l.CurrentPhase})
			if len(rows) > 0 {
				view.CurrentPhase = rows[0]
			}
			return err
		})
	}
	if l.CurrentWeek != nil {
		g.Go(func() error {
			rows, err := s.weeks.GetByIDs(gctx, nil, []uuid.UUID{*l.CurrentWeek})
			if len(rows) > 0 {
				view.CurrentWeek = rows[0]
			}
			return err
		})
	}
	if l.CurrentLesson != nil {
		g.Go(func() error {
			rows, err := s.lessons.GetByIDs(gctx, nil, []uuid.UUID{*l.CurrentLesson})
			if len(rows) > 0 {
				view.CurrentLesson = rows[0]
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return view, nil
}

func (s *progressService) course(ctx context.Context, op string, courseID uuid.UUID) (*types.Course, error) {
	c, err := s.courses.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if c == nil {
		return nil, domainagg.NotFound(op, "course not found")
	}
	return c, nil
}

func (s *progressService) ToggleResource(ctx context.Context, userID, courseID, resourceID uuid.UUID) ([]string, error) {
	const op = "progress.toggle_resource"
	c, err := s.course(ctx, op, courseID)
	if err != nil {
		return nil, err
	}
	if !c.HasResource(resourceID) {
		return nil, domainagg.NotFound(op, "resource not found in course")
	}
	var completed []string
	err = s.mutate(ctx, op, userID, func(_ dbctx.Context, l *types.Ledger) (bool, error) {
		l.ToggleResource(resourceID.String())
		completed = filterResources(l.CompletedResources, c)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

func (s *progressService) GetCompletedResources(ctx context.Context, userID, courseID uuid.UUID) ([]string, error) {
	const op = "progress.completed_resources"
	c, err := s.course(ctx, op, courseID)
	if err != nil {
		return nil, err
	}
	l, err := s.ledgers.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if l == nil {
		return []string{}, nil
	}
	return filterResources(l.CompletedResources, c), nil
}

func filterResources(done []string, c *types.Course) []string {
	in := make(map[string]struct{}, len(done))
	for _, id := range done {
		in[id] = struct{}{}
	}
	out := []string{}
	for _, id := range c.ResourceIDs() {
		if _, ok := in[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
