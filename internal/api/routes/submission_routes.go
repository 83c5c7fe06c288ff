package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/onlytoseef/earnshadowhub/internal/api/handlers"
	"github.com/onlytoseef/earnshadowhub/internal/api/middleware"
)

// SubmissionRoutes handles the setup of submission lifecycle routes
type SubmissionRoutes struct {
	handler   *handlers.SubmissionHandler
	jwtSecret string
}

// NewSubmissionRoutes creates a new SubmissionRoutes instance
func NewSubmissionRoutes(handler *handlers.SubmissionHandler, jwtSecret string) *SubmissionRoutes {
	return &SubmissionRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
	}
}

// RegisterRoutes registers all submission lifecycle routes
func (r *SubmissionRoutes) RegisterRoutes(router *gin.Engine) {
	// User lifecycle: start, submit, list own
	tasks := router.Group("/api/tasks")
	tasks.Use(middleware.NewAuthMiddleware(r.jwtSecret))
	tasks.POST("/:id/start", r.handler.StartTask)
	tasks.POST("/:id/submit", r.handler.SubmitReview)

	submissions := router.Group("/api/submissions")
	submissions.Use(middleware.NewAuthMiddleware(r.jwtSecret))
	submissions.GET("", r.handler.ListMySubmissions)

	// Admin review queue
	admin := router.Group("/api/admin/submissions")
	admin.Use(middleware.NewAuthMiddleware(r.jwtSecret))
	admin.Use(middleware.RequireAdmin())

	admin.GET("/pending", r.handler.ListPending)
	admin.GET("/:id", r.handler.GetSubmission)
	admin.PATCH("/:id/approve", r.handler.ApproveSubmission)
	admin.PATCH("/:id/reject", r.handler.RejectSubmission)
}
