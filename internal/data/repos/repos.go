package repos

import (
	"github.com/quildacademy/quild-backend/internal/data/repos/catalog"
	"github.com/quildacademy/quild-backend/internal/data/repos/course"
	"github.com/quildacademy/quild-backend/internal/data/repos/progress"
	"github.com/quildacademy/quild-backend/internal/data/repos/user"
	"github.com/quildacademy/quild-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo

type PhaseRepo = catalog.PhaseRepo
type WeekRepo = catalog.WeekRepo
type LessonRepo = catalog.LessonRepo

type LedgerRepo = progress.LedgerRepo

type CourseRepo = course.CourseRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }

func NewPhaseRepo(db *gorm.DB, log *logger.Logger) PhaseRepo { return catalog.NewPhaseRepo(db, log) }
func NewWeekRepo(db *gorm.DB, log *logger.Logger) WeekRepo { return catalog.NewWeekRepo(db, log) }
func NewLessonRepo(db *gorm.DB, log *logger.Logger) LessonRepo {
	return catalog.NewLessonRepo(db, log)
}

func NewLedgerRepo(db *gorm.DB, log *logger.Logger) LedgerRepo {
	return progress.NewLedgerRepo(db, log)
}

func NewCourseRepo(db *gorm.DB, log *logger.Logger) CourseRepo { return course.NewCourseRepo(db, log) }
