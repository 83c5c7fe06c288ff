package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/onlytoseef/earnshadowhub/internal/api/handlers"
	"github.com/onlytoseef/earnshadowhub/internal/api/middleware"
)

// TaskRoutes handles the setup of task catalog routes
type TaskRoutes struct {
	handler   *handlers.TaskHandler
	jwtSecret string
}

// NewTaskRoutes creates a new TaskRoutes instance
func NewTaskRoutes(handler *handlers.TaskHandler, jwtSecret string) *TaskRoutes {
	return &TaskRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
	}
}

// RegisterRoutes registers all task catalog routes
func (r *TaskRoutes) RegisterRoutes(router *gin.Engine) {
	// User-facing: tasks visible to the authenticated user's plan tier
	tasks := router.Group("/api/tasks")
	tasks.Use(middleware.NewAuthMiddleware(r.jwtSecret))
	tasks.GET("/available", r.handler.AvailableTasks)
	tasks.GET("/plan-types", r.handler.PlanTypes)
	tasks.GET("/categories", r.handler.Categories)

	// Admin catalog management
	admin := router.Group("/api/admin/tasks")
	admin.Use(middleware.NewAuthMiddleware(r.jwtSecret))
	admin.Use(middleware.RequireAdmin())

	admin.GET("", r.handler.ListTasks)
	admin.POST("", r.handler.CreateTask)
	admin.GET("/:id", r.handler.GetTask)
	admin.PUT("/:id", r.handler.UpdateTask)
	admin.DELETE("/:id", r.handler.DeleteTask)
	admin.GET("/plan/:planType", r.handler.TasksByPlan)
}
