package services

import (
	"context"
	"math"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/quildacademy/quild-backend/internal/data/aggregates"
	"github.com/quildacademy/quild-backend/internal/data/repos"
	"github.com/quildacademy/quild-backend/internal/platform/logger"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

type LeaderboardEntry struct {
	Rank             int       `json:"rank"`
	UserID           uuid.UUID `json:"userId"`
	Name             string    `json:"name"`
	Points           int       `json:"points"`
	Streak           int       `json:"streak"`
	LongestStreak    int       `json:"longestStreak"`
	TimeSpent        int       `json:"timeSpent"`
	CompletedLessons int       `json:"completedLessons"`
	CompletedWeeks   int       `json:"completedWeeks"`
	CompletedPhases  int       `json:"completedPhases"`
	Avatar           string    `json:"avatar"`
	IsCurrentUser    bool      `json:"isCurrentUser"`
}

// LeaderboardCache stores ranked snapshots keyed by generation and limit.
// Invalidate advances the generation, and Set must drop a snapshot whose
// generation is no longer current.
type LeaderboardCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64, limit int, out any) (bool, error)
	Set(ctx context.Context, gen int64, limit int, v any) error
	Invalidate(ctx context.Context) error
}

type LeaderboardService interface {
	// Rank returns the top users. viewerID marks the caller's own entry.
	Rank(ctx context.Context, viewerID uuid.UUID, limit int) ([]LeaderboardEntry, error)
	Invalidate(ctx context.Context)
}

type leaderboardService struct {
	log     *logger.Logger
	ledgers repos.LedgerRepo
	users   repos.UserRepo
	cache   LeaderboardCache
	fills   singleflight.Group
}

// NewLeaderboardService builds the service. cache may be nil.
func NewLeaderboardService(log *logger.Logger, ledgers repos.LedgerRepo, users repos.UserRepo, cache LeaderboardCache) LeaderboardService {
	return &leaderboardService{
		log:     log.With("service", "LeaderboardService"),
		ledgers: ledgers,
		users:   users,
		cache:   cache,
	}
}

// ClampLeaderboardLimit applies the default and the upper bound.
func ClampLeaderboardLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLeaderboardLimit
	case limit > MaxLeaderboardLimit:
		return MaxLeaderboardLimit
	}
	return limit
}

func (s *leaderboardService) Rank(ctx context.Context, viewerID uuid.UUID, limit int) ([]LeaderboardEntry, error) {
	limit = ClampLeaderboardLimit(limit)
	var entries []LeaderboardEntry

	// gen is read before the fill so a snapshot computed across an
	// invalidation is never stored as current.
	gen, cached := int64(0), s.cache != nil
	if cached {
		g, err := s.cache.Generation(ctx)
		if err != nil {
			s.log.Warn("leaderboard cache generation read failed", "error", err)
			cached = false
		}
		gen = g
	}

	hit := false
	if cached {
		ok, err := s.cache.Get(ctx, gen, limit, &entries)
		if err != nil {
			s.log.Warn("leaderboard cache read failed", "error", err)
		}
		hit = ok
	}
	if !hit {
		fillKey := strconv.FormatInt(gen, 10) + ":" + strconv.Itoa(limit)
		if !cached {
			fillKey = "nocache:" + strconv.Itoa(limit)
		}
		// The fill is shared by concurrent callers, so one caller going away
		// must not fail the others.
		fillCtx := context.WithoutCancel(ctx)
		v, err, _ := s.fills.Do(fillKey, func() (any, error) {
			fresh, err := s.compute(fillCtx, limit)
			if err != nil {
				return nil, err
			}
			if cached {
				if err := s.cache.Set(fillCtx, gen, limit, fresh); err != nil {
					s.log.Warn("leaderboard cache write failed", "error", err)
				}
			}
			return fresh, nil
		})
		if err != nil {
			return nil, err
		}
		shared := v.([]LeaderboardEntry)
		entries = make([]LeaderboardEntry, len(shared))
		copy(entries, shared)
	}

	for i := range entries {
		entries[i].IsCurrentUser = viewerID != uuid.Nil && entries[i].UserID == viewerID
	}
	return entries, nil
}

func (s *leaderboardService) compute(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	const op = "leaderboard.rank"
	ledgers, err := s.ledgers.Top(ctx, nil, limit)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	ids := make([]uuid.UUID, 0, len(ledgers))
	for _, l := range ledgers {
		ids = append(ids, l.UserID)
	}
	users, err := s.users.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	byID := make(map[uuid.UUID]int, len(users))
	for i, u := range users {
		byID[u.ID] = i
	}

	out := make([]LeaderboardEntry, 0, len(ledgers))
	for _, l := range ledgers {
		idx, ok := byID[l.UserID]
		if !ok {
			continue
		}
		u := users[idx]
		out = append(out, LeaderboardEntry{
			Rank:             len(out) + 1,
			UserID:           u.ID,
			Name:             u.DisplayName(),
			Points:           l.TotalPoints,
			Streak:           l.CurrentStreak,
			LongestStreak:    l.LongestStreak,
			TimeSpent:        int(math.Round(float64(l.TotalTimeSpent) / 60)),
			CompletedLessons: len(l.CompletedLessons),
			CompletedWeeks:   len(l.CompletedWeeks),
			CompletedPhases:  len(l.CompletedPhases),
			Avatar:           u.Photo,
		})
	}
	return out, nil
}

func (s *leaderboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("leaderboard cache invalidation failed", "error", err)
	}
}
