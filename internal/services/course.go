package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/quildacademy/quild-backend/internal/data/aggregates"
	"github.com/quildacademy/quild-backend/internal/data/repos"
	types "github.com/quildacademy/quild-backend/internal/domain"
	domainagg "github.com/quildacademy/quild-backend/internal/domain/aggregates"
	"github.com/quildacademy/quild-backend/internal/platform/logger"
)

type CourseService interface {
	GetCourse(ctx context.Context, id uuid.UUID) (*types.Course, error)
	ListCourses(ctx context.Context) ([]*types.Course, error)
}

type courseService struct {
	log     *logger.Logger
	courses repos.CourseRepo
}

func NewCourseService(log *logger.Logger, courses repos.CourseRepo) CourseService {
	return &courseService{log: log.With("service", "CourseService"), courses: courses}
}

func (s *courseService) GetCourse(ctx context.Context, id uuid.UUID) (*types.Course, error) {
	const op = "course.get"
	c, err := s.courses.GetByID(ctx, nil, id)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if c == nil {
		return nil, domainagg.NotFound(op, "course not found")
	}
	return c, nil
}

func (s *courseService) ListCourses(ctx context.Context) ([]*types.Course, error) {
	out, err := s.courses.List(ctx, nil)
	if err != nil {
		return nil, aggregates.MapError("course.list", err)
	}
	return out, nil
}
