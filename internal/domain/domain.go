package domain

import (
	"github.com/quildacademy/quild-backend/internal/domain/catalog"
	"github.com/quildacademy/quild-backend/internal/domain/course"
	"github.com/quildacademy/quild-backend/internal/domain/progress"
	"github.com/quildacademy/quild-backend/internal/domain/user"
)

type User = user.User

type Phase = catalog.Phase
type Week = catalog.Week
type Lesson = catalog.Lesson
type LessonType = catalog.LessonType
type LessonContent = catalog.LessonContent
type LessonResource = catalog.LessonResource

type Ledger = progress.Ledger
type Completion = progress.Completion
type Achievement = progress.Achievement

type Course = course.Course
type CourseModule = course.CourseModule
type CourseResource = course.CourseResource

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&User{},
		&Phase{},
		&Week{},
		&Lesson{},
		&Ledger{},
		&Course{},
		&CourseModule{},
		&CourseResource{},
	}
}
