package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/quildacademy/quild-backend/internal/http/handlers"
	httpMW "github.com/quildacademy/quild-backend/internal/http/middleware"
	"github.com/quildacademy/quild-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler      *httpH.HealthHandler
	WebhookHandler     *httpH.WebhookHandler
	SeedHandler        *httpH.SeedHandler
	CatalogHandler     *httpH.CatalogHandler
	LessonHandler      *httpH.LessonHandler
	ProgressHandler    *httpH.ProgressHandler
	CourseHandler      *httpH.CourseHandler
	LeaderboardHandler *httpH.LeaderboardHandler
	UserHandler        *httpH.UserHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.WebhookHandler != nil {
			api.POST("/webhooks/clerk", cfg.WebhookHandler.IdentityEvent)
		}
		if cfg.SeedHandler != nil {
			api.POST("/seed", cfg.SeedHandler.Seed)
		}
	}

	if cfg.AuthMiddleware == nil {
		return r
	}

	// Signed in, local user not required yet.
	session := api.Group("/")
	session.Use(cfg.AuthMiddleware.RequireAuth())
	if cfg.UserHandler != nil {
		session.GET("/users/ensure", cfg.UserHandler.Ensure)
	}

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.EnsureUser())
	{
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
		}

		// Catalog
		if cfg.CatalogHandler != nil {
			protected.GET("/catalog/phases", cfg.CatalogHandler.ListPhases)
			protected.GET("/catalog/weeks", cfg.CatalogHandler.ListWeeks)
			protected.GET("/catalog/lessons", cfg.CatalogHandler.ListLessons)
		}

		// Lesson
		if cfg.LessonHandler != nil {
			protected.GET("/lesson/:id", cfg.LessonHandler.GetLesson)
			protected.POST("/lesson/:id/complete", cfg.LessonHandler.CompleteLesson)
		}

		// Progress
		if cfg.ProgressHandler != nil {
			protected.GET("/progress", cfg.ProgressHandler.GetProgress)
			protected.GET("/progress/resources", cfg.ProgressHandler.GetCompletedResources)
			protected.POST("/progress/resources", cfg.ProgressHandler.ToggleResource)
		}

		// Course
		if cfg.CourseHandler != nil {
			protected.GET("/courses/:id", cfg.CourseHandler.GetCourse)
		}

		// Leaderboard
		if cfg.LeaderboardHandler != nil {
			protected.GET("/leaderboard", cfg.LeaderboardHandler.GetLeaderboard)
		}
	}

	return r
}
