package routes

import (
	"github.com/gin-gonic/gin"
	"voice-type/internal/api/middleware"
	"voice-type/internal/api/v1/handlers"
	"voice-type/internal/api/v1/services"
)

// HealthPath is excluded from access logs
const HealthPath = "/v1/health"

// ServiceContainer holds all services needed by handlers
type ServiceContainer struct {
	TranscriptionService services.TranscriptionService
	APIToken             string
	MaxUploadSize        int64
}

// RegisterRoutes registers all v1 API routes on router, which is the /v1 group
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	healthHandler := handlers.NewHealthHandler(container.TranscriptionService)
	router.GET("/health", healthHandler.Health)

	transcriptionHandler := handlers.NewTranscriptionHandler(container.TranscriptionService)
	router.POST("/transcribe",
		middleware.BearerAuth(container.APIToken),
		middleware.BodySizeLimit(container.MaxUploadSize),
		transcriptionHandler.Transcribe,
	)
}
