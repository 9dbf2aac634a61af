package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"voice-type/internal/api/v1/dto"
	"voice-type/internal/api/v1/services"
)

// HealthHandler reports service readiness
type HealthHandler struct {
	service services.TranscriptionService
}

func NewHealthHandler(service services.TranscriptionService) *HealthHandler {
	return &HealthHandler{service: service}
}

// Health handles GET /v1/health
//
// @Summary Health check
// @Description Always 200 while the process is up; model_loaded turns true once the engine is ready.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /v1/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:      "ok",
		ModelLoaded: h.service.Ready(),
	})
}
