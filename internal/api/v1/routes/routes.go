package routes

import (
	"github.com/gin-gonic/gin"

	"voicenotes/internal/api/middleware"
	"voicenotes/internal/api/v1/handlers"
	"voicenotes/internal/api/v1/services"
)

// ServiceContainer holds all services needed by handlers.
type ServiceContainer struct {
	NoteService   services.NoteService
	ExportService services.ExportService
	JobService    services.JobService
}

// RegisterRoutes registers all v1 API routes.
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	router.Use(middleware.RequestID())

	noteHandler := handlers.NewNoteHandler(container.NoteService, container.ExportService)
	notes := router.Group("/notes")
	{
		notes.POST("", noteHandler.Structure)
		notes.POST("/audio", noteHandler.Upload)
		notes.GET("/export", noteHandler.Export)
		notes.GET("/:id", noteHandler.Get)
		notes.GET("", noteHandler.List)
		notes.DELETE("/:id", noteHandler.Delete)
	}

	// Async ingestion is optional; it needs a running queue.
	if container.JobService != nil {
		jobHandler := handlers.NewJobHandler(container.JobService)
		jobs := router.Group("/jobs")
		{
			jobs.POST("", jobHandler.Create)
			jobs.GET("/:id", jobHandler.Get)
		}
	}
}
