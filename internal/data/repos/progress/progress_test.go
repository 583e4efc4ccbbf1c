package progress

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quildacademy/quild-backend/internal/data/repos/testutil"
	types "github.com/quildacademy/quild-backend/internal/domain"
	domainprogress "github.com/quildacademy/quild-backend/internal/domain/progress"
)

func TestLedgerRepoCreateIfAbsentIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewLedgerRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, db, "user_ledger")

	lessonID := uuid.New()
	first, err := repo.CreateIfAbsent(ctx, nil, domainprogress.New(u.ID, nil, nil, &lessonID))
	if err != nil {
		t.Fatalf("CreateIfAbsent: %v", err)
	}
	second, err := repo.CreateIfAbsent(ctx, nil, domainprogress.New(u.ID, nil, nil, nil))
	if err != nil {
		t.Fatalf("CreateIfAbsent(again): %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected one ledger per user, got %s and %s", first.ID, second.ID)
	}
	if second.CurrentLesson == nil || *second.CurrentLesson != lessonID {
		t.Fatalf("expected first cursor to win, got %v", second.CurrentLesson)
	}
	if second.CompletedLessons == nil || len(second.CompletedLessons) != 0 {
		t.Fatalf("expected empty completion list, got %v", second.CompletedLessons)
	}

	none, err := repo.GetByUserID(ctx, nil, uuid.New())
	if err != nil {
		t.Fatalf("GetByUserID(missing): %v", err)
	}
	if none != nil {
		t.Fatalf("GetByUserID(missing): expected nil")
	}
}

func TestLedgerRepoSaveDetectsStaleVersion(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewLedgerRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, db, "user_save")
	testutil.SeedLedger(t, ctx, db, u.ID)

	a, err := repo.GetByUserID(ctx, nil, u.ID)
	if err != nil {
		t.Fatalf("GetByUserID(a): %v", err)
	}
	b, err := repo.GetByUserID(ctx, nil, u.ID)
	if err != nil {
		t.Fatalf("GetByUserID(b): %v", err)
	}

	now := time.Now().UTC()
	a.TotalPoints = 10
	a.CurrentStreak, a.LongestStreak = 1, 1
	a.LastActivityDate = &now
	a.CompletedLessons = append(a.CompletedLessons, types.Completion{ID: uuid.New(), CompletedAt: now, TimeSpent: 30, PointsEarned: 10})
	ok, err := repo.Save(ctx, nil, a)
	if err != nil {
		t.Fatalf("Save(a): %v", err)
	}
	if !ok || a.Version != 1 {
		t.Fatalf("Save(a): expected success and version 1, got ok=%v version=%d", ok, a.Version)
	}

	b.TotalPoints = 99
	ok, err = repo.Save(ctx, nil, b)
	if err != nil {
		t.Fatalf("Save(b): %v", err)
	}
	if ok {
		t.Fatalf("Save(b): expected stale write to be rejected")
	}

	reloaded, err := repo.GetByUserID(ctx, nil, u.ID)
	if err != nil {
		t.Fatalf("GetByUserID(reload): %v", err)
	}
	if reloaded.TotalPoints != 10 || len(reloaded.CompletedLessons) != 1 || reloaded.Version != 1 {
		t.Fatalf("unexpected ledger after save: %+v", reloaded)
	}
	if reloaded.LastActivityDate == nil {
		t.Fatalf("expected last activity date to persist")
	}
}

func TestLedgerRepoTopOrdering(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewLedgerRepo(db, testutil.Logger(t))

	points := []int{50, 80, 80, 10}
	streaks := []int{1, 2, 3, 1}
	ids := make([]uuid.UUID, len(points))
	for i := range points {
		u := testutil.SeedUser(t, ctx, db, "user_top_"+string(rune('a'+i)))
		l := testutil.SeedLedger(t, ctx, db, u.ID)
		if err := db.Model(l).Updates(map[string]any{"total_points": points[i], "current_streak": streaks[i]}).Error; err != nil {
			t.Fatalf("update ledger: %v", err)
		}
		ids[i] = u.ID
	}

	top, err := repo.Top(ctx, nil, 0)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	want := []uuid.UUID{ids[2], ids[1], ids[0], ids[3]}
	if len(top) != len(want) {
		t.Fatalf("Top: expected %d rows, got %d", len(want), len(top))
	}
	for i := range want {
		if top[i].UserID != want[i] {
			t.Fatalf("Top: position %d: got user %s want %s", i, top[i].UserID, want[i])
		}
	}

	limited, err := repo.Top(ctx, nil, 2)
	if err != nil {
		t.Fatalf("Top(2): %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("Top(2): expected 2 rows, got %d", len(limited))
	}
}

func TestLedgerRepoTopSkipsOrphansBeforeLimit(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewLedgerRepo(db, testutil.Logger(t))

	orphan := testutil.SeedLedger(t, ctx, db, uuid.New())
	if err := db.Model(orphan).Update("total_points", 1000).Error; err != nil {
		t.Fatalf("update orphan: %v", err)
	}
	for i, pts := range []int{30, 20, 10} {
		u := testutil.SeedUser(t, ctx, db, "user_orphan_"+string(rune('a'+i)))
		l := testutil.SeedLedger(t, ctx, db, u.ID)
		if err := db.Model(l).Update("total_points", pts).Error; err != nil {
			t.Fatalf("update ledger: %v", err)
		}
	}

	top, err := repo.Top(ctx, nil, 2)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("Top(2): expected 2 rows, got %d", len(top))
	}
	for _, l := range top {
		if l.UserID == orphan.UserID {
			t.Fatalf("Top returned orphan ledger %s", l.ID)
		}
	}
	if top[0].TotalPoints != 30 || top[1].TotalPoints != 20 {
		t.Fatalf("unexpected order: %d, %d", top[0].TotalPoints, top[1].TotalPoints)
	}
}
