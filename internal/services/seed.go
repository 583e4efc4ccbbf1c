package services

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"

	"github.com/quildacademy/quild-backend/internal/data/aggregates"
	"github.com/quildacademy/quild-backend/internal/data/repos"
	types "github.com/quildacademy/quild-backend/internal/domain"
	"github.com/quildacademy/quild-backend/internal/domain/catalog"
	"github.com/quildacademy/quild-backend/internal/platform/dbctx"
	"github.com/quildacademy/quild-backend/internal/platform/logger"
)

//go:embed seeddata/curriculum.yaml
var defaultSeed []byte

type SeedFile struct {
	Phases  []SeedPhase  `yaml:"phases" validate:"required,min=1,dive"`
	Courses []SeedCourse `yaml:"courses" validate:"dive"`
}

type SeedPhase struct {
	Name              string     `yaml:"name" validate:"required"`
	Description       string     `yaml:"description"`
	Order             int        `yaml:"order" validate:"min=1"`
	EstimatedDuration int        `yaml:"estimatedDuration" validate:"min=0"`
	Color             string     `yaml:"color" validate:"omitempty,hexcolor"`
	Inactive          bool       `yaml:"inactive"`
	Requires          []int      `yaml:"requires"`
	Weeks             []SeedWeek `yaml:"weeks" validate:"dive"`
}

type SeedWeek struct {
	WeekNumber        int          `yaml:"weekNumber" validate:"min=1"`
	Title             string       `yaml:"title" validate:"required"`
	Description       string       `yaml:"description"`
	EstimatedDuration int          `yaml:"estimatedDuration" validate:"min=0"`
	Inactive          bool         `yaml:"inactive"`
	Objectives        []string     `yaml:"objectives"`
	Lessons           []SeedLesson `yaml:"lessons" validate:"dive"`
}

type SeedLesson struct {
	Title       string            `yaml:"title" validate:"required"`
	Description string            `yaml:"description"`
	DayNumber   int               `yaml:"dayNumber" validate:"min=0"`
	Order       int               `yaml:"order" validate:"min=1"`
	Type        string            `yaml:"type" validate:"required,oneof=video workshop project reading quiz assignment"`
	Points      int               `yaml:"points" validate:"min=0"`
	Inactive    bool              `yaml:"inactive"`
	Content     SeedLessonContent `yaml:"content"`
}

type SeedLessonContent struct {
	Duration     int            `yaml:"duration" validate:"min=0"`
	VideoURL     string         `yaml:"videoUrl" validate:"omitempty,url"`
	ReadingURL   string         `yaml:"readingUrl" validate:"omitempty,url"`
	Instructions string         `yaml:"instructions"`
	Resources    []SeedResource `yaml:"resources" validate:"dive"`
}

type SeedResource struct {
	Title string `yaml:"title" validate:"required"`
	Type  string `yaml:"type" validate:"required,oneof=youtube pdf notion link meet"`
	URL   string `yaml:"url" validate:"required,url"`
}

type SeedCourse struct {
	Title       string       `yaml:"title" validate:"required"`
	Description string       `yaml:"description"`
	Modules     []SeedModule `yaml:"modules" validate:"dive"`
}

type SeedModule struct {
	Title     string         `yaml:"title" validate:"required"`
	Resources []SeedResource `yaml:"resources" validate:"dive"`
}

type SeedReport struct {
	Phases  int `json:"phases"`
	Weeks   int `json:"weeks"`
	Lessons int `json:"lessons"`
	Courses int `json:"courses"`
}

type SeedService interface {
	// Seed replaces the curriculum and course data with raw, or with the
	// embedded data set when raw is empty.
	Seed(ctx context.Context, raw []byte) (*SeedReport, error)
}

type seedService struct {
	log      *logger.Logger
	tx       aggregates.TxRunner
	phases   repos.PhaseRepo
	weeks    repos.WeekRepo
	lessons  repos.LessonRepo
	courses  repos.CourseRepo
	validate *validator.Validate
}

func NewSeedService(log *logger.Logger, tx aggregates.TxRunner, phases repos.PhaseRepo, weeks repos.WeekRepo, lessons repos.LessonRepo, courses repos.CourseRepo) SeedService {
	return &seedService{
		log:      log.With("service", "SeedService"),
		tx:       tx,
		phases:   phases,
		weeks:    weeks,
		lessons:  lessons,
		courses:  courses,
		validate: validator.New(),
	}
}

// ParseSeed decodes and validates a seed document.
func ParseSeed(v *validator.Validate, raw []byte) (*SeedFile, error) {
	var f SeedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, aggregates.ValidationError(fmt.Sprintf("decode seed: %v", err))
	}
	if err := v.Struct(f); err != nil {
		return nil, aggregates.ValidationError(fmt.Sprintf("invalid seed: %v", err))
	}
	orders := map[int]bool{}
	for _, p := range f.Phases {
		if orders[p.Order] {
			return nil, aggregates.ValidationError(fmt.Sprintf("duplicate phase order %d", p.Order))
		}
		orders[p.Order] = true
		weeks := map[int]bool{}
		for _, w := range p.Weeks {
			if weeks[w.WeekNumber] {
				return nil, aggregates.ValidationError(fmt.Sprintf("phase %d: duplicate week %d", p.Order, w.WeekNumber))
			}
			weeks[w.WeekNumber] = true
			lessons := map[int]bool{}
			for _, l := range w.Lessons {
				if lessons[l.Order] {
					return nil, aggregates.ValidationError(fmt.Sprintf("phase %d week %d: duplicate lesson order %d", p.Order, w.WeekNumber, l.Order))
				}
				lessons[l.Order] = true
			}
		}
	}
	for _, p := range f.Phases {
		for _, r := range p.Requires {
			if !orders[r] {
				return nil, aggregates.ValidationError(fmt.Sprintf("phase %d requires unknown phase %d", p.Order, r))
			}
		}
	}
	return &f, nil
}

func (s *seedService) Seed(ctx context.Context, raw []byte) (*SeedReport, error) {
	const op = "seed.run"
	if len(raw) == 0 {
		raw = defaultSeed
	}
	f, err := ParseSeed(s.validate, raw)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	phases, weeks, lessons := buildCurriculum(f)
	courses := buildCourses(f)

	err = s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		if err := s.courses.DeleteAll(dbc.Ctx, dbc.Tx); err != nil {
			return err
		}
		if err := s.lessons.DeleteAll(dbc.Ctx, dbc.Tx); err != nil {
			return err
		}
		if err := s.weeks.DeleteAll(dbc.Ctx, dbc.Tx); err != nil {
			return err
		}
		if err := s.phases.DeleteAll(dbc.Ctx, dbc.Tx); err != nil {
			return err
		}
		if _, err := s.phases.Create(dbc.Ctx, dbc.Tx, phases); err != nil {
			return err
		}
		if len(weeks) > 0 {
			if _, err := s.weeks.Create(dbc.Ctx, dbc.Tx, weeks); err != nil {
				return err
			}
		}
		if len(lessons) > 0 {
			if _, err := s.lessons.Create(dbc.Ctx, dbc.Tx, lessons); err != nil {
				return err
			}
		}
		if len(courses) > 0 {
			if _, err := s.courses.Create(dbc.Ctx, dbc.Tx, courses); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	report := &SeedReport{Phases: len(phases), Weeks: len(weeks), Lessons: len(lessons), Courses: len(courses)}
	s.log.Info("database seeded", "phases", report.Phases, "weeks", report.Weeks, "lessons", report.Lessons, "courses", report.Courses)
	return report, nil
}

func buildCurriculum(f *SeedFile) ([]*types.Phase, []*types.Week, []*types.Lesson) {
	var (
		phases  []*types.Phase
		weeks   []*types.Week
		lessons []*types.Lesson
	)
	idByOrder := map[int]uuid.UUID{}
	for _, sp := range f.Phases {
		idByOrder[sp.Order] = uuid.New()
	}
	for _, sp := range f.Phases {
		p := &types.Phase{
			ID:                idByOrder[sp.Order],
			Name:              sp.Name,
			Description:       sp.Description,
			Order:             sp.Order,
			IsActive:          !sp.Inactive,
			EstimatedDuration: sp.EstimatedDuration,
			Color:             sp.Color,
			Prerequisites:     datatypes.JSONSlice[uuid.UUID]{},
		}
		for _, r := range sp.Requires {
			p.Prerequisites = append(p.Prerequisites, idByOrder[r])
		}
		phases = append(phases, p)

		for _, sw := range sp.Weeks {
			w := &types.Week{
				ID:                uuid.New(),
				PhaseID:           p.ID,
				WeekNumber:        sw.WeekNumber,
				Title:             sw.Title,
				Description:       sw.Description,
				IsActive:          !sw.Inactive,
				EstimatedDuration: sw.EstimatedDuration,
				Objectives:        datatypes.JSONSlice[string](append([]string{}, sw.Objectives...)),
			}
			weeks = append(weeks, w)

			for _, sl := range sw.Lessons {
				points := sl.Points
				if points == 0 {
					points = catalog.DefaultLessonPoints
				}
				content := types.LessonContent{
					Duration:     sl.Content.Duration,
					VideoURL:     sl.Content.VideoURL,
					ReadingURL:   sl.Content.ReadingURL,
					Instructions: sl.Content.Instructions,
					Resources:    []types.LessonResource{},
				}
				for _, r := range sl.Content.Resources {
					content.Resources = append(content.Resources, types.LessonResource{
						Title: r.Title,
						URL:   r.URL,
						Type:  catalog.ResourceType(r.Type),
					})
				}
				lessons = append(lessons, &types.Lesson{
					ID:            uuid.New(),
					WeekID:        w.ID,
					DayNumber:     sl.DayNumber,
					Title:         sl.Title,
					Description:   sl.Description,
					Type:          catalog.LessonType(sl.Type),
					Content:       datatypes.NewJSONType(content),
					Points:        points,
					IsActive:      !sl.Inactive,
					Order:         sl.Order,
					Prerequisites: datatypes.JSONSlice[uuid.UUID]{},
				})
			}
		}
	}
	return phases, weeks, lessons
}

func buildCourses(f *SeedFile) []*types.Course {
	var out []*types.Course
	for _, sc := range f.Courses {
		c := &types.Course{Title: sc.Title, Description: sc.Description}
		for mi, sm := range sc.Modules {
			m := types.CourseModule{Position: mi + 1, Title: sm.Title}
			for ri, sr := range sm.Resources {
				m.Resources = append(m.Resources, types.CourseResource{
					Position: ri + 1,
					Title:    sr.Title,
					Type:     sr.Type,
					URL:      sr.URL,
				})
			}
			c.Modules = append(c.Modules, m)
		}
		out = append(out, c)
	}
	return out
}
