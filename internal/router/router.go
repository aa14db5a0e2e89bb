package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/tasklight/backend/api/handler"
)

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Task     *apiHandler.TaskHandler
	Tag      *apiHandler.TagHandler
	Settings *apiHandler.SettingsHandler
	Health   *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)

	// Task collection and derived views
	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	r.GET("/api/v1/tasks/today", authMiddleware(handlers.Task.GetToday))
	r.GET("/api/v1/tasks/overdue", authMiddleware(handlers.Task.GetOverdue))
	r.GET("/api/v1/tasks/upcoming", authMiddleware(handlers.Task.GetUpcoming))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.PUT("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))
	r.POST("/api/v1/tasks/{id}/toggle", authMiddleware(handlers.Task.ToggleTask))

	// Tags
	r.GET("/api/v1/tags", authMiddleware(handlers.Tag.GetTags))
	r.POST("/api/v1/tags", authMiddleware(handlers.Tag.CreateTag))
	r.PUT("/api/v1/tags/{id}", authMiddleware(handlers.Tag.UpdateTag))
	r.DELETE("/api/v1/tags/{id}", authMiddleware(handlers.Tag.DeleteTag))

	// Settings
	r.GET("/api/v1/settings", authMiddleware(handlers.Settings.GetSettings))
	r.PUT("/api/v1/settings", authMiddleware(handlers.Settings.UpdateSettings))

	return r
}
