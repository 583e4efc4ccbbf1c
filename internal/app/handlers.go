package app

import (
	apphttp "github.com/quildacademy/quild-backend/internal/http"
	httpH "github.com/quildacademy/quild-backend/internal/http/handlers"
	httpMW "github.com/quildacademy/quild-backend/internal/http/middleware"
	"github.com/quildacademy/quild-backend/internal/platform/logger"
)

type Handlers struct {
	Health      *httpH.HealthHandler
	Webhook     *httpH.WebhookHandler
	Seed        *httpH.SeedHandler
	Catalog     *httpH.CatalogHandler
	Lesson      *httpH.LessonHandler
	Progress    *httpH.ProgressHandler
	Course      *httpH.CourseHandler
	Leaderboard *httpH.LeaderboardHandler
	User        *httpH.UserHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services, db httpH.DBPinger) Handlers {
	log.Info("Wiring handlers...")
	h := Handlers{
		Health:      httpH.NewHealthHandler(db),
		Webhook:     httpH.NewWebhookHandler(services.Webhook),
		Catalog:     httpH.NewCatalogHandler(services.Catalog),
		Lesson:      httpH.NewLessonHandler(services.Catalog, services.Progress),
		Progress:    httpH.NewProgressHandler(services.Progress),
		Course:      httpH.NewCourseHandler(services.Course),
		Leaderboard: httpH.NewLeaderboardHandler(services.Leaderboard),
		User:        httpH.NewUserHandler(services.User),
	}
	if cfg.SeedEndpointEnabled {
		log.Warn("seed endpoint enabled; POST /api/seed replaces all curriculum data")
		h.Seed = httpH.NewSeedHandler(services.Seed)
	}
	return h
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, services Services) *apphttp.Server {
	serviceName := ""
	if cfg.OtelEnabled {
		serviceName = cfg.OtelServiceName
	}
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:                log,
		ServiceName:        serviceName,
		AllowedOrigins:     cfg.AllowedOrigins,
		AuthMiddleware:     httpMW.NewAuthMiddleware(log, services.Auth, services.User),
		HealthHandler:      handlers.Health,
		WebhookHandler:     handlers.Webhook,
		SeedHandler:        handlers.Seed,
		CatalogHandler:     handlers.Catalog,
		LessonHandler:      handlers.Lesson,
		ProgressHandler:    handlers.Progress,
		CourseHandler:      handlers.Course,
		LeaderboardHandler: handlers.Leaderboard,
		UserHandler:        handlers.User,
	})
}
