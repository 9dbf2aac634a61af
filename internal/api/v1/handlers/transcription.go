package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"voice-type/internal/api/errors"
	"voice-type/internal/api/middleware"
	"voice-type/internal/api/v1/dto"
	"voice-type/internal/api/v1/services"
)

// TranscriptionHandler handles transcription-related API endpoints
type TranscriptionHandler struct {
	service services.TranscriptionService
}

// NewTranscriptionHandler creates a new transcription handler
func NewTranscriptionHandler(service services.TranscriptionService) *TranscriptionHandler {
	return &TranscriptionHandler{
		service: service,
	}
}

// Transcribe handles POST /v1/transcribe
//
// @Summary Transcribe an audio file
// @Description Uploads an audio file and returns its transcript. The language defaults to en; "auto" lets the engine detect it.
// @Tags transcription
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Audio file"
// @Param language formData string false "ISO 639-1 language code or auto" default(en)
// @Success 200 {object} dto.TranscribeResponse "Transcript"
// @Failure 401 {object} errors.APIError "Missing or invalid token"
// @Failure 413 {object} errors.APIError "Upload too large"
// @Failure 422 {object} errors.APIError "Missing file"
// @Failure 500 {object} errors.APIError "Transcription failed"
// @Failure 503 {object} errors.APIError "Model not loaded"
// @Router /v1/transcribe [post]
func (h *TranscriptionHandler) Transcribe(c *gin.Context) {
	// Refuse before touching the body when there is no engine
	if !h.service.Ready() {
		middleware.HandleError(c, errors.NewServiceUnavailableError("Model not loaded"))
		return
	}

	var form dto.TranscribeForm
	if err := middleware.ValidateForm(c, &form); err != nil {
		middleware.HandleError(c, err)
		return
	}

	file, err := form.File.Open()
	if err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("Unable to read uploaded file"))
		return
	}
	defer file.Close()

	language := form.Language
	if language == "" {
		language = c.Query("language")
	}

	response, err := h.service.Transcribe(c.Request.Context(), &dto.TranscribeRequest{
		Filename: form.File.Filename,
		Language: language,
		Audio:    file,
	})
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
