package app

import (
	"gorm.io/gorm"

	"github.com/quildacademy/quild-backend/internal/clients/redis"
	"github.com/quildacademy/quild-backend/internal/data/aggregates"
	"github.com/quildacademy/quild-backend/internal/platform/logger"
	"github.com/quildacademy/quild-backend/internal/services"
)

type Services struct {
	Auth        services.AuthService
	User        services.UserService
	Catalog     services.CatalogService
	Leaderboard services.LeaderboardService
	Progress    services.ProgressService
	Course      services.CourseService
	Webhook     services.WebhookService
	Seed        services.SeedService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) Services {
	log.Info("Wiring services...")

	tx := aggregates.NewGormTxRunner(db)

	var (
		cache  services.LeaderboardCache
		locker services.Locker
	)
	if clients.Redis != nil {
		cache = redis.NewLeaderboardCache(log, clients.Redis, cfg.LeaderboardCacheTTL)
		locker = redis.NewLocker(log, clients.Redis, "lock:progress:", cfg.ProgressLockTTL)
	} else {
		locker = services.NewLocalLocker()
	}

	user := services.NewUserService(log, reposet.User, clients.Profiles)
	catalog := services.NewCatalogService(log, reposet.Phase, reposet.Week, reposet.Lesson, reposet.Ledger)
	leaderboard := services.NewLeaderboardService(log, reposet.Ledger, reposet.User, cache)

	return Services{
		Auth:        services.NewAuthService(log, clients.Sessions),
		User:        user,
		Catalog:     catalog,
		Leaderboard: leaderboard,
		Progress: services.NewProgressService(log, tx,
			reposet.Ledger, reposet.Phase, reposet.Week, reposet.Lesson, reposet.Course,
			catalog, leaderboard, locker,
			services.ProgressServiceConfig{StreakLocation: cfg.StreakLocation()},
		),
		Course:  services.NewCourseService(log, reposet.Course),
		Webhook: services.NewWebhookService(log, clients.Webhooks, user),
		Seed:    services.NewSeedService(log, tx, reposet.Phase, reposet.Week, reposet.Lesson, reposet.Course),
	}
}
