package app

import (
	"gorm.io/gorm"

	"github.com/quildacademy/quild-backend/internal/data/repos"
	"github.com/quildacademy/quild-backend/internal/platform/logger"
)

type Repos struct {
	User   repos.UserRepo
	Phase  repos.PhaseRepo
	Week   repos.WeekRepo
	Lesson repos.LessonRepo
	Ledger repos.LedgerRepo
	Course repos.CourseRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:   repos.NewUserRepo(db, log),
		Phase:  repos.NewPhaseRepo(db, log),
		Week:   repos.NewWeekRepo(db, log),
		Lesson: repos.NewLessonRepo(db, log),
		Ledger: repos.NewLedgerRepo(db, log),
		Course: repos.NewCourseRepo(db, log),
	}
}
