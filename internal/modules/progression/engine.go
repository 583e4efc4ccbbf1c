// Package progression applies lesson completions to a progress ledger:
// credit, streak, week and phase cascade, and cursor advance.
package progression

import (
	"time"

	"github.com/google/uuid"

	types "github.com/quildacademy/quild-backend/internal/domain"
	domainagg "github.com/quildacademy/quild-backend/internal/domain/aggregates"
)

type Engine struct {
	catalog  *Catalog
	location *time.Location
}

// New returns an engine that counts streak days in loc (UTC when nil).
func New(catalog *Catalog, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{catalog: catalog, location: loc}
}

type Result struct {
	AlreadyCompleted bool
	PointsEarned     int
	TimeSpent        int
	NewTotalPoints   int
	NewStreak        int
	WeekCompleted    bool
	PhaseCompleted   bool
	NextLesson       *types.Lesson
}

// Complete records the completion of lessonID on ledger at now. timeSpent is in
// minutes; zero falls back to the lesson's duration. The ledger is mutated in
// place unless the lesson was already completed.
func (e *Engine) Complete(ledger *types.Ledger, lessonID uuid.UUID, timeSpent int, now time.Time) (Result, error) {
	const op = "progression.complete"
	if ledger == nil {
		return Result{}, domainagg.NewError(domainagg.CodeInternal, op, "nil ledger", nil)
	}
	if timeSpent < 0 {
		return Result{}, domainagg.Validation(op, "timeSpent must not be negative")
	}
	lesson, ok := e.catalog.Lesson(lessonID)
	if !ok {
		return Result{}, domainagg.NotFound(op, "lesson not found")
	}

	if ledger.HasLesson(lesson.ID) {
		return Result{
			AlreadyCompleted: true,
			NewTotalPoints:   ledger.TotalPoints,
			NewStreak:        ledger.CurrentStreak,
		}, nil
	}

	if timeSpent == 0 {
		timeSpent = lesson.Duration()
	}
	ledger.CompletedLessons = append(ledger.CompletedLessons, types.Completion{
		ID:           lesson.ID,
		CompletedAt:  now,
		TimeSpent:    timeSpent,
		PointsEarned: lesson.Points,
	})
	ledger.TotalPoints += lesson.Points
	ledger.TotalTimeSpent += timeSpent

	e.updateStreak(ledger, now)

	res := Result{
		PointsEarned: lesson.Points,
		TimeSpent:    timeSpent,
	}
	week, _ := e.catalog.Week(lesson.WeekID)
	res.WeekCompleted = e.cascadeWeek(ledger, week, now)
	if res.WeekCompleted {
		phase, _ := e.catalog.Phase(week.PhaseID)
		res.PhaseCompleted = e.cascadePhase(ledger, phase, now)
	}

	res.NextLesson = e.advance(ledger, lesson)
	res.NewTotalPoints = ledger.TotalPoints
	res.NewStreak = ledger.CurrentStreak
	return res, nil
}

func (e *Engine) updateStreak(ledger *types.Ledger, now time.Time) {
	switch {
	case ledger.LastActivityDate == nil:
		ledger.CurrentStreak = 1
	default:
		switch d := DaysBetween(*ledger.LastActivityDate, now, e.location); {
		case d <= 0:
			if ledger.CurrentStreak == 0 {
				ledger.CurrentStreak = 1
			}
		case d == 1:
			ledger.CurrentStreak++
		default:
			ledger.CurrentStreak = 1
		}
	}
	if ledger.CurrentStreak > ledger.LongestStreak {
		ledger.LongestStreak = ledger.CurrentStreak
	}
	at := now
	ledger.LastActivityDate = &at
}

// DaysBetween counts calendar-day boundaries between from and to in loc.
func DaysBetween(from, to time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	fy, fm, fd := from.In(loc).Date()
	ty, tm, td := to.In(loc).Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func (e *Engine) cascadeWeek(ledger *types.Ledger, week *types.Week, now time.Time) bool {
	if week == nil || ledger.HasWeek(week.ID) {
		return false
	}
	lessons := e.catalog.Lessons(week.ID)
	if len(lessons) == 0 {
		return false
	}
	done := ledger.LessonSet()
	entry := types.Completion{ID: week.ID, CompletedAt: now}
	for _, l := range lessons {
		if _, ok := done[l.ID]; !ok {
			return false
		}
		entry.TimeSpent += l.Duration()
		entry.PointsEarned += l.Points
	}
	ledger.CompletedWeeks = append(ledger.CompletedWeeks, entry)
	return true
}

func (e *Engine) cascadePhase(ledger *types.Ledger, phase *types.Phase, now time.Time) bool {
	if phase == nil || ledger.HasPhase(phase.ID) {
		return false
	}
	weeks := e.catalog.completableWeeks(phase.ID)
	if len(weeks) == 0 {
		return false
	}
	byID := make(map[uuid.UUID]types.Completion, len(ledger.CompletedWeeks))
	for _, c := range ledger.CompletedWeeks {
		byID[c.ID] = c
	}
	entry := types.Completion{ID: phase.ID, CompletedAt: now}
	for _, w := range weeks {
		c, ok := byID[w.ID]
		if !ok {
			return false
		}
		entry.TimeSpent += c.TimeSpent
		entry.PointsEarned += c.PointsEarned
	}
	ledger.CompletedPhases = append(ledger.CompletedPhases, entry)
	return true
}

// advance moves the cursor past lesson: next lesson in the week, else the first
// lesson of the next week in the phase, else the first lesson of the next
// phase. Weeks and phases without active lessons are skipped. At the end of
// the curriculum the cursor is left as is and nil is returned.
func (e *Engine) advance(ledger *types.Ledger, lesson *types.Lesson) *types.Lesson {
	week, ok := e.catalog.Week(lesson.WeekID)
	if !ok {
		return nil
	}
	phase, ok := e.catalog.Phase(week.PhaseID)
	if !ok {
		return nil
	}

	for _, l := range e.catalog.Lessons(week.ID) {
		if l.Order > lesson.Order {
			setCursor(ledger, phase, week, l)
			return l
		}
	}
	for _, w := range e.catalog.Weeks(phase.ID) {
		if w.WeekNumber <= week.WeekNumber {
			continue
		}
		if ls := e.catalog.Lessons(w.ID); len(ls) > 0 {
			setCursor(ledger, phase, w, ls[0])
			return ls[0]
		}
	}
	for _, p := range e.catalog.Phases() {
		if p.Order <= phase.Order {
			continue
		}
		for _, w := range e.catalog.Weeks(p.ID) {
			if ls := e.catalog.Lessons(w.ID); len(ls) > 0 {
				setCursor(ledger, p, w, ls[0])
				return ls[0]
			}
		}
	}
	return nil
}

func setCursor(ledger *types.Ledger, phase *types.Phase, week *types.Week, lesson *types.Lesson) {
	p, w, l := phase.ID, week.ID, lesson.ID
	ledger.CurrentPhase = &p
	ledger.CurrentWeek = &w
	ledger.CurrentLesson = &l
}
