package progression

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/quildacademy/quild-backend/internal/domain"
	domainagg "github.com/quildacademy/quild-backend/internal/domain/aggregates"
	"github.com/quildacademy/quild-backend/internal/domain/catalog"
)

type fixture struct {
	phases  []*types.Phase
	weeks   [][]*types.Week
	lessons [][][]*types.Lesson
}

// buildCatalog lays out phases/weeks/lessons; layout[p][w] is the number of
// lessons in week w of phase p.
func buildCatalog(layout [][]int) (*Catalog, fixture) {
	var f fixture
	var allW []*types.Week
	var allL []*types.Lesson
	for pi, weeks := range layout {
		p := &types.Phase{ID: uuid.New(), Name: "Phase", Order: pi + 1, IsActive: true}
		f.phases = append(f.phases, p)
		var pw []*types.Week
		var pl [][]*types.Lesson
		for wi, n := range weeks {
			w := &types.Week{ID: uuid.New(), PhaseID: p.ID, WeekNumber: wi + 1, Title: "Week", IsActive: true}
			pw = append(pw, w)
			allW = append(allW, w)
			var wl []*types.Lesson
			for li := 0; li < n; li++ {
				l := &types.Lesson{
					ID:       uuid.New(),
					WeekID:   w.ID,
					Title:    "Lesson",
					Type:     catalog.LessonVideo,
					Content:  datatypes.NewJSONType(types.LessonContent{Duration: 30}),
					Points:   10,
					IsActive: true,
					Order:    li + 1,
				}
				wl = append(wl, l)
				allL = append(allL, l)
			}
			pl = append(pl, wl)
		}
		f.weeks = append(f.weeks, pw)
		f.lessons = append(f.lessons, pl)
	}
	return NewCatalog(f.phases, allW, allL), f
}

func freshLedger(cat *Catalog) *types.Ledger {
	var pp, wp, lp *uuid.UUID
	p, w, l := cat.Entry()
	if p != nil {
		pp = &p.ID
	}
	if w != nil {
		wp = &w.ID
	}
	if l != nil {
		lp = &l.ID
	}
	return newLedger(pp, wp, lp)
}

func newLedger(p, w, l *uuid.UUID) *types.Ledger {
	led := &types.Ledger{ID: uuid.New(), UserID: uuid.New(), CurrentPhase: p, CurrentWeek: w, CurrentLesson: l}
	return led
}

var day0 = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func TestComplete_FirstLessonCreditsAndAdvances(t *testing.T) {
	cat, f := buildCatalog([][]int{{2}})
	e := New(cat, time.UTC)
	led := freshLedger(cat)

	res, err := e.Complete(led, f.lessons[0][0][0].ID, 0, day0)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.AlreadyCompleted {
		t.Fatalf("unexpected AlreadyCompleted")
	}
	if res.PointsEarned != 10 || res.NewTotalPoints != 10 || res.NewStreak != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if led.TotalTimeSpent != 30 {
		t.Fatalf("expected duration fallback of 30, got %d", led.TotalTimeSpent)
	}
	if led.LongestStreak != 1 || led.LastActivityDate == nil {
		t.Fatalf("streak bookkeeping not updated: %+v", led)
	}
	if res.NextLesson == nil || res.NextLesson.ID != f.lessons[0][0][1].ID {
		t.Fatalf("expected next lesson in same week")
	}
	if led.CurrentLesson == nil || *led.CurrentLesson != f.lessons[0][0][1].ID {
		t.Fatalf("cursor not advanced")
	}
	if res.WeekCompleted {
		t.Fatalf("week should not be complete yet")
	}
}

func TestComplete_Idempotent(t *testing.T) {
	cat, f := buildCatalog([][]int{{2}})
	e := New(cat, time.UTC)
	led := freshLedger(cat)
	id := f.lessons[0][0][0].ID

	if _, err := e.Complete(led, id, 12, day0); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	before := *led
	beforeLessons := len(led.CompletedLessons)

	res, err := e.Complete(led, id, 12, day0.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("Complete again: %v", err)
	}
	if !res.AlreadyCompleted {
		t.Fatalf("expected AlreadyCompleted")
	}
	if len(led.CompletedLessons) != beforeLessons || led.TotalPoints != before.TotalPoints ||
		led.CurrentStreak != before.CurrentStreak || led.TotalTimeSpent != before.TotalTimeSpent {
		t.Fatalf("ledger mutated on repeat completion")
	}
	if !led.LastActivityDate.Equal(*before.LastActivityDate) {
		t.Fatalf("last activity moved on repeat completion")
	}
}

func TestComplete_ExplicitTimeSpent(t *testing.T) {
	cat, f := buildCatalog([][]int{{1}})
	e := New(cat, time.UTC)
	led := freshLedger(cat)
	res, err := e.Complete(led, f.lessons[0][0][0].ID, 7, day0)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.TimeSpent != 7 || led.TotalTimeSpent != 7 || led.CompletedLessons[0].TimeSpent != 7 {
		t.Fatalf("expected explicit time spent of 7, got %+v", res)
	}
}

func TestComplete_Rejects(t *testing.T) {
	cat, f := buildCatalog([][]int{{1}})
	e := New(cat, time.UTC)
	led := freshLedger(cat)

	if _, err := e.Complete(led, f.lessons[0][0][0].ID, -1, day0); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := e.Complete(led, uuid.New(), 0, day0); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(led.CompletedLessons) != 0 || led.TotalPoints != 0 {
		t.Fatalf("rejected completion mutated ledger")
	}
}

func TestComplete_InactiveLessonNotFound(t *testing.T) {
	p := &types.Phase{ID: uuid.New(), Order: 1, IsActive: true}
	w := &types.Week{ID: uuid.New(), PhaseID: p.ID, WeekNumber: 1, IsActive: true}
	l := &types.Lesson{ID: uuid.New(), WeekID: w.ID, Order: 1, Points: 10, IsActive: false}
	cat := NewCatalog([]*types.Phase{p}, []*types.Week{w}, []*types.Lesson{l})
	e := New(cat, time.UTC)
	if _, err := e.Complete(freshLedger(cat), l.ID, 0, day0); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not found for inactive lesson, got %v", err)
	}
}

func TestComplete_Streak(t *testing.T) {
	cases := []struct {
		name   string
		last   time.Time
		streak int
		want   int
	}{
		{name: "same day", last: day0.Add(-2 * time.Hour), streak: 4, want: 4},
		{name: "next day", last: day0.Add(-20 * time.Hour), streak: 4, want: 5},
		{name: "gap", last: day0.Add(-72 * time.Hour), streak: 4, want: 1},
		{name: "clock skew", last: day0.Add(30 * time.Hour), streak: 3, want: 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cat, f := buildCatalog([][]int{{1}})
			e := New(cat, time.UTC)
			led := freshLedger(cat)
			last := tc.last
			led.LastActivityDate = &last
			led.CurrentStreak = tc.streak
			led.LongestStreak = 4

			res, err := e.Complete(led, f.lessons[0][0][0].ID, 0, day0)
			if err != nil {
				t.Fatalf("Complete: %v", err)
			}
			if res.NewStreak != tc.want || led.CurrentStreak != tc.want {
				t.Fatalf("streak = %d, want %d", led.CurrentStreak, tc.want)
			}
			wantLongest := 4
			if tc.want > wantLongest {
				wantLongest = tc.want
			}
			if led.LongestStreak != wantLongest {
				t.Fatalf("longest = %d, want %d", led.LongestStreak, wantLongest)
			}
		})
	}
}

func TestDaysBetween_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	a := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC) // 18:00 local
	b := time.Date(2026, 3, 11, 4, 0, 0, 0, time.UTC)  // 23:00 local, same day
	if d := DaysBetween(a, b, loc); d != 0 {
		t.Fatalf("expected same local day, got %d", d)
	}
	if d := DaysBetween(a, b, time.UTC); d != 1 {
		t.Fatalf("expected next UTC day, got %d", d)
	}
}

func TestComplete_WeekAndPhaseCascadeAnyOrder(t *testing.T) {
	cat, f := buildCatalog([][]int{{3, 2}, {1}})
	e := New(cat, time.UTC)
	led := freshLedger(cat)

	order := []*types.Lesson{
		f.lessons[0][1][1], f.lessons[0][0][2], f.lessons[0][1][0],
		f.lessons[0][0][0], f.lessons[0][0][1],
	}
	var last Result
	for i, l := range order {
		res, err := e.Complete(led, l.ID, 0, day0)
		if err != nil {
			t.Fatalf("Complete #%d: %v", i, err)
		}
		last = res
		if i == 2 && !res.WeekCompleted {
			t.Fatalf("expected week 2 to complete after its last lesson")
		}
	}
	if !last.WeekCompleted || !last.PhaseCompleted {
		t.Fatalf("expected week and phase cascade on final lesson: %+v", last)
	}
	if len(led.CompletedWeeks) != 2 || len(led.CompletedPhases) != 1 {
		t.Fatalf("weeks=%d phases=%d", len(led.CompletedWeeks), len(led.CompletedPhases))
	}
	if led.CompletedPhases[0].ID != f.phases[0].ID {
		t.Fatalf("wrong phase completed")
	}
	if led.CompletedPhases[0].PointsEarned != 50 || led.CompletedPhases[0].TimeSpent != 150 {
		t.Fatalf("phase entry sums: %+v", led.CompletedPhases[0])
	}
	if led.HasPhase(f.phases[1].ID) {
		t.Fatalf("second phase must not be complete")
	}
}

func TestComplete_CursorCrossesWeekAndPhase(t *testing.T) {
	cat, f := buildCatalog([][]int{{1, 1}, {1}})
	e := New(cat, time.UTC)
	led := freshLedger(cat)

	res, err := e.Complete(led, f.lessons[0][0][0].ID, 0, day0)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.NextLesson == nil || res.NextLesson.ID != f.lessons[0][1][0].ID || *led.CurrentWeek != f.weeks[0][1].ID {
		t.Fatalf("expected cursor in next week")
	}

	res, err = e.Complete(led, f.lessons[0][1][0].ID, 0, day0)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.NextLesson == nil || res.NextLesson.ID != f.lessons[1][0][0].ID || *led.CurrentPhase != f.phases[1].ID {
		t.Fatalf("expected cursor in next phase")
	}

	res, err = e.Complete(led, f.lessons[1][0][0].ID, 0, day0)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.NextLesson != nil {
		t.Fatalf("expected no next lesson at end of curriculum")
	}
	if *led.CurrentLesson != f.lessons[1][0][0].ID {
		t.Fatalf("cursor should stay on the last lesson")
	}
}

func TestComplete_SkipsEmptyWeek(t *testing.T) {
	cat, f := buildCatalog([][]int{{1, 0, 1}})
	e := New(cat, time.UTC)
	led := freshLedger(cat)

	res, err := e.Complete(led, f.lessons[0][0][0].ID, 0, day0)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.NextLesson == nil || res.NextLesson.ID != f.lessons[0][2][0].ID {
		t.Fatalf("expected empty week to be skipped")
	}

	res, err = e.Complete(led, f.lessons[0][2][0].ID, 0, day0)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !res.PhaseCompleted {
		t.Fatalf("empty week must not block phase completion")
	}
}

func TestComplete_MonotonicCounters(t *testing.T) {
	cat, f := buildCatalog([][]int{{2, 2}})
	e := New(cat, time.UTC)
	led := freshLedger(cat)
	prevPoints, prevTime := 0, 0
	at := day0
	for _, wk := range f.lessons[0] {
		for _, l := range wk {
			if _, err := e.Complete(led, l.ID, 0, at); err != nil {
				t.Fatalf("Complete: %v", err)
			}
			if led.TotalPoints < prevPoints || led.TotalTimeSpent < prevTime {
				t.Fatalf("counters decreased")
			}
			if led.LongestStreak < led.CurrentStreak {
				t.Fatalf("longest below current")
			}
			prevPoints, prevTime = led.TotalPoints, led.TotalTimeSpent
			at = at.Add(24 * time.Hour)
		}
	}
	if led.CurrentStreak != 4 || led.TotalPoints != 40 {
		t.Fatalf("streak=%d points=%d", led.CurrentStreak, led.TotalPoints)
	}
}

func TestCatalogEntry(t *testing.T) {
	cat, f := buildCatalog([][]int{{0}, {2}})
	p, w, l := cat.Entry()
	if p == nil || p.ID != f.phases[0].ID || w == nil || l != nil {
		t.Fatalf("expected entry phase with empty week and no lesson")
	}
	empty := NewCatalog(nil, nil, nil)
	if p, w, l := empty.Entry(); p != nil || w != nil || l != nil {
		t.Fatalf("expected nil entry for empty catalog")
	}
}
