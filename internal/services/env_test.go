package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/quildacademy/quild-backend/internal/data/aggregates"
	aggtest "github.com/quildacademy/quild-backend/internal/data/aggregates/testutil"
	"github.com/quildacademy/quild-backend/internal/data/repos"
	"github.com/quildacademy/quild-backend/internal/data/repos/testutil"
	"github.com/quildacademy/quild-backend/internal/platform/identity"
	"github.com/quildacademy/quild-backend/internal/platform/logger"
)

type testEnv struct {
	db  *gorm.DB
	log *logger.Logger

	users   repos.UserRepo
	phases  repos.PhaseRepo
	weeks   repos.WeekRepo
	lessons repos.LessonRepo
	ledgers repos.LedgerRepo
	courses repos.CourseRepo

	catalog     CatalogService
	leaderboard LeaderboardService
	progress    ProgressService
	cache       *memCache
	clock       *fakeClock
	hooks       *aggtest.HooksRecorder
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	e := &testEnv{
		db:      db,
		log:     log,
		users:   repos.NewUserRepo(db, log),
		phases:  repos.NewPhaseRepo(db, log),
		weeks:   repos.NewWeekRepo(db, log),
		lessons: repos.NewLessonRepo(db, log),
		ledgers: repos.NewLedgerRepo(db, log),
		courses: repos.NewCourseRepo(db, log),
		cache:   newMemCache(),
		clock:   &fakeClock{now: time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)},
		hooks:   &aggtest.HooksRecorder{},
	}
	e.catalog = NewCatalogService(log, e.phases, e.weeks, e.lessons, e.ledgers)
	e.leaderboard = NewLeaderboardService(log, e.ledgers, e.users, e.cache)
	e.progress = e.progressWith(e.ledgers)
	return e
}

func (e *testEnv) progressWith(ledgers repos.LedgerRepo) ProgressService {
	return NewProgressService(e.log, aggregates.NewGormTxRunner(e.db), ledgers, e.phases, e.weeks, e.lessons, e.courses,
		e.catalog, e.leaderboard, NewLocalLocker(), ProgressServiceConfig{Now: e.clock.Now, Hooks: e.hooks})
}

// memCache is an in-memory LeaderboardCache.
type memCache struct {
	mu          sync.Mutex
	gen         int64
	data        map[int][]LeaderboardEntry
	invalidated int
	skipped     int
}

func newMemCache() *memCache { return &memCache{data: map[int][]LeaderboardEntry{}} }

func (c *memCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

func (c *memCache) Get(_ context.Context, gen int64, limit int, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false, nil
	}
	v, ok := c.data[limit]
	if !ok {
		return false, nil
	}
	*(out.(*[]LeaderboardEntry)) = append([]LeaderboardEntry(nil), v...)
	return true, nil
}

func (c *memCache) Set(_ context.Context, gen int64, limit int, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.skipped++
		return nil
	}
	c.data[limit] = append([]LeaderboardEntry(nil), v.([]LeaderboardEntry)...)
	return nil
}

func (c *memCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.data = map[int][]LeaderboardEntry{}
	c.invalidated++
	return nil
}

type stubProfiles struct {
	profile *identity.Profile
	err     error
	calls   int
}

func (s *stubProfiles) FetchProfile(_ context.Context, externalID string) (*identity.Profile, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	p := *s.profile
	p.ExternalID = externalID
	return &p, nil
}
