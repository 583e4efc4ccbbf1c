package progression

import (
	"sort"

	"github.com/google/uuid"

	types "github.com/quildacademy/quild-backend/internal/domain"
)

// Catalog is an immutable, indexed view of the active curriculum.
type Catalog struct {
	phases        []*types.Phase
	phaseByID     map[uuid.UUID]*types.Phase
	weekByID      map[uuid.UUID]*types.Week
	lessonByID    map[uuid.UUID]*types.Lesson
	weeksByPhase  map[uuid.UUID][]*types.Week
	lessonsByWeek map[uuid.UUID][]*types.Lesson
}

// NewCatalog indexes the given rows. Inactive rows are dropped; orphans are ignored.
func NewCatalog(phases []*types.Phase, weeks []*types.Week, lessons []*types.Lesson) *Catalog {
	c := &Catalog{
		phaseByID:     map[uuid.UUID]*types.Phase{},
		weekByID:      map[uuid.UUID]*types.Week{},
		lessonByID:    map[uuid.UUID]*types.Lesson{},
		weeksByPhase:  map[uuid.UUID][]*types.Week{},
		lessonsByWeek: map[uuid.UUID][]*types.Lesson{},
	}
	for _, p := range phases {
		if p == nil || !p.IsActive {
			continue
		}
		c.phases = append(c.phases, p)
		c.phaseByID[p.ID] = p
	}
	for _, w := range weeks {
		if w == nil || !w.IsActive {
			continue
		}
		if _, ok := c.phaseByID[w.PhaseID]; !ok {
			continue
		}
		c.weekByID[w.ID] = w
		c.weeksByPhase[w.PhaseID] = append(c.weeksByPhase[w.PhaseID], w)
	}
	for _, l := range lessons {
		if l == nil || !l.IsActive {
			continue
		}
		if _, ok := c.weekByID[l.WeekID]; !ok {
			continue
		}
		c.lessonByID[l.ID] = l
		c.lessonsByWeek[l.WeekID] = append(c.lessonsByWeek[l.WeekID], l)
	}

	sort.SliceStable(c.phases, func(i, j int) bool { return c.phases[i].Order < c.phases[j].Order })
	for id := range c.weeksByPhase {
		ws := c.weeksByPhase[id]
		sort.SliceStable(ws, func(i, j int) bool { return ws[i].WeekNumber < ws[j].WeekNumber })
	}
	for id := range c.lessonsByWeek {
		ls := c.lessonsByWeek[id]
		sort.SliceStable(ls, func(i, j int) bool { return ls[i].Order < ls[j].Order })
	}
	return c
}

func (c *Catalog) Phase(id uuid.UUID) (*types.Phase, bool) {
	p, ok := c.phaseByID[id]
	return p, ok
}

func (c *Catalog) Week(id uuid.UUID) (*types.Week, bool) {
	w, ok := c.weekByID[id]
	return w, ok
}

// Lesson looks up an active lesson reachable through active ancestors.
func (c *Catalog) Lesson(id uuid.UUID) (*types.Lesson, bool) {
	l, ok := c.lessonByID[id]
	return l, ok
}

// Lessons returns the active lessons of a week ordered by order.
func (c *Catalog) Lessons(weekID uuid.UUID) []*types.Lesson { return c.lessonsByWeek[weekID] }

// Weeks returns the active weeks of a phase ordered by week number.
func (c *Catalog) Weeks(phaseID uuid.UUID) []*types.Week { return c.weeksByPhase[phaseID] }

// Phases returns the active phases ordered by order.
func (c *Catalog) Phases() []*types.Phase { return c.phases }

// Entry returns the curriculum entry point: the lowest-order active phase,
// its lowest-numbered active week and that week's lowest-order active lesson.
// Levels that have no active child are returned as nil.
func (c *Catalog) Entry() (*types.Phase, *types.Week, *types.Lesson) {
	if len(c.phases) == 0 {
		return nil, nil, nil
	}
	phase := c.phases[0]
	weeks := c.weeksByPhase[phase.ID]
	if len(weeks) == 0 {
		return phase, nil, nil
	}
	week := weeks[0]
	lessons := c.lessonsByWeek[week.ID]
	if len(lessons) == 0 {
		return phase, week, nil
	}
	return phase, week, lessons[0]
}

// completableWeeks are the active weeks of a phase that hold at least one
// active lesson. Only these gate phase completion.
func (c *Catalog) completableWeeks(phaseID uuid.UUID) []*types.Week {
	var out []*types.Week
	for _, w := range c.weeksByPhase[phaseID] {
		if len(c.lessonsByWeek[w.ID]) > 0 {
			out = append(out, w)
		}
	}
	return out
}
