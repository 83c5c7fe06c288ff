package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/onlytoseef/earnshadowhub/internal/api/handlers"
	"github.com/onlytoseef/earnshadowhub/internal/api/middleware"
)

// UserRoutes handles the setup of admin user management routes
type UserRoutes struct {
	handler   *handlers.UserHandler
	jwtSecret string
}

// NewUserRoutes creates a new UserRoutes instance
func NewUserRoutes(handler *handlers.UserHandler, jwtSecret string) *UserRoutes {
	return &UserRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
	}
}

// RegisterRoutes registers all admin user management routes
func (r *UserRoutes) RegisterRoutes(router *gin.Engine) {
	admin := router.Group("/api/admin/users")
	admin.Use(middleware.NewAuthMiddleware(r.jwtSecret))
	admin.Use(middleware.RequireAdmin())

	admin.GET("", r.handler.ListUsers)
	admin.PATCH("/:id/plan", r.handler.UpdateUserPlan)
}
