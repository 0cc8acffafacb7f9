package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"tasktracker/internal/config"
	"tasktracker/internal/handlers"
	"tasktracker/internal/middleware"
)

type Handlers struct {
	Task         *handlers.TaskHandler
	Project      *handlers.ProjectHandler
	Cost         *handlers.CostHandler
	Report       *handlers.ReportHandler
	Notification *handlers.NotificationHandler
	User         *handlers.UserHandler
	Reminder     *handlers.ReminderHandler
	Health       *handlers.HealthHandler
}

func SetupRoutes(cfg config.Config, logger *slog.Logger, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.CustomRecovery(logger))
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(middleware.NewCORSMiddleware(cfg.CORS))

	// ---- public
	r.GET("/healthz", h.Health.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ---- protected
	api := r.Group("/")
	api.Use(middleware.AuthMiddleware(cfg.JWT))

	tasks := api.Group("/tasks")
	{
		tasks.POST("", h.Task.Create)
		tasks.GET("", h.Task.List)
		tasks.GET("/:id", h.Task.GetByID)
		tasks.PUT("/:id", h.Task.Update)
		tasks.PATCH("/:id/status", h.Task.UpdateStatus)
		tasks.DELETE("/:id", h.Task.Delete)
	}

	projects := api.Group("/projects")
	{
		projects.POST("", h.Project.Create)
		projects.GET("", h.Project.List)
		projects.GET("/:id", h.Project.GetByID)
		projects.PUT("/:id", h.Project.Update)
		projects.DELETE("/:id", h.Project.Delete)
		projects.GET("/:id/report", h.Report.ProjectReport)
		projects.GET("/:id/report.pdf", h.Report.ProjectReportPDF)
	}

	costs := api.Group("/costs")
	{
		costs.POST("", h.Cost.Create)
		costs.GET("", h.Cost.List)
		costs.GET("/mine", h.Cost.Mine)
		costs.GET("/summary", h.Cost.Summary)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("", h.Notification.List)
		notifications.GET("/stream", h.Notification.Stream)
		notifications.POST("/read-all", h.Notification.MarkAllRead)
		notifications.POST("/:id/read", h.Notification.MarkRead)
	}

	users := api.Group("/users")
	{
		users.GET("/me", h.User.Me)
		users.PUT("/me/contact", h.User.UpdateContact)
		users.GET("", middleware.RequireAdmin(), h.User.List)
		users.POST("", middleware.RequireAdmin(), h.User.Create)
		users.POST("/:id/token", middleware.RequireAdmin(), h.User.IssueToken)
	}

	reminders := api.Group("/reminders", middleware.RequireAdmin())
	{
		reminders.POST("/run", h.Reminder.Run)
		reminders.GET("/status", h.Reminder.Status)
	}

	return r
}
