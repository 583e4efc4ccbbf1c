package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/quildacademy/quild-backend/internal/domain"
	"github.com/quildacademy/quild-backend/internal/domain/catalog"
	"github.com/quildacademy/quild-backend/internal/domain/progress"
)

const (
	LessonPoints   = 10
	LessonDuration = 30
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, externalID string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:         uuid.New(),
		ExternalID: externalID,
		Email:      externalID + "@example.com",
		FirstName:  "A",
		LastName:   "B",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedLedger(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.Ledger {
	tb.Helper()
	l := progress.New(userID, nil, nil, nil)
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed ledger: %v", err)
	}
	return l
}

// Curriculum is a seeded catalog indexed by position.
type Curriculum struct {
	Phases  []*types.Phase
	Weeks   [][]*types.Week
	Lessons [][][]*types.Lesson
}

func (c *Curriculum) Lesson(p, w, l int) *types.Lesson { return c.Lessons[p][w][l] }

// SeedCurriculum creates phases, weeks and lessons from layout, where
// layout[p][w] is the number of lessons in week w of phase p. Orders and week
// numbers start at 1.
func SeedCurriculum(tb testing.TB, ctx context.Context, tx *gorm.DB, layout [][]int) *Curriculum {
	tb.Helper()
	out := &Curriculum{}
	for p, weeks := range layout {
		phase := &types.Phase{
			Name:              fmt.Sprintf("Phase %d", p+1),
			Order:             p + 1,
			IsActive:          true,
			EstimatedDuration: 7 * len(weeks),
		}
		if err := tx.WithContext(ctx).Create(phase).Error; err != nil {
			tb.Fatalf("seed phase: %v", err)
		}
		out.Phases = append(out.Phases, phase)
		out.Weeks = append(out.Weeks, nil)
		out.Lessons = append(out.Lessons, nil)
		for w, n := range weeks {
			week := &types.Week{
				PhaseID:           phase.ID,
				WeekNumber:        w + 1,
				Title:             fmt.Sprintf("Week %d.%d", p+1, w+1),
				IsActive:          true,
				EstimatedDuration: 7,
			}
			if err := tx.WithContext(ctx).Create(week).Error; err != nil {
				tb.Fatalf("seed week: %v", err)
			}
			out.Weeks[p] = append(out.Weeks[p], week)
			var lessons []*types.Lesson
			for l := 0; l < n; l++ {
				lesson := &types.Lesson{
					WeekID:    week.ID,
					DayNumber: l + 1,
					Title:     fmt.Sprintf("Lesson %d.%d.%d", p+1, w+1, l+1),
					Type:      catalog.LessonVideo,
					Content:   datatypes.NewJSONType(catalog.LessonContent{Duration: LessonDuration}),
					Points:    LessonPoints,
					IsActive:  true,
					Order:     l + 1,
				}
				if err := tx.WithContext(ctx).Create(lesson).Error; err != nil {
					tb.Fatalf("seed lesson: %v", err)
				}
				lessons = append(lessons, lesson)
			}
			out.Lessons[p] = append(out.Lessons[p], lessons)
		}
	}
	return out
}

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, modules, resourcesPerModule int) *types.Course {
	tb.Helper()
	c := &types.Course{Title: "Legacy course", Description: "checklist"}
	for m := 0; m < modules; m++ {
		mod := types.CourseModule{Position: m, Title: fmt.Sprintf("Module %d", m+1)}
		for r := 0; r < resourcesPerModule; r++ {
			mod.Resources = append(mod.Resources, types.CourseResource{
				Position: r,
				Title:    fmt.Sprintf("Resource %d.%d", m+1, r+1),
				Type:     "link",
				URL:      fmt.Sprintf("https://example.com/%d/%d", m, r),
			})
		}
		c.Modules = append(c.Modules, mod)
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}
