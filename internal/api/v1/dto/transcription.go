package dto

import (
	"io"
	"mime/multipart"
)

// TranscribeForm is the multipart body of POST /v1/transcribe
type TranscribeForm struct {
	File     *multipart.FileHeader `form:"file" binding:"required" swaggerignore:"true"`
	Language string                `form:"language" binding:"omitempty,max=16"`
}

// TranscribeRequest is one upload handed to the transcription service
type TranscribeRequest struct {
	// Filename is the client supplied name; only its extension is used
	Filename string
	// Language is an ISO 639-1 code, "auto", or empty for the server default
	Language string
	Audio    io.Reader
}

// TranscribeResponse is the result of a successful transcription
type TranscribeResponse struct {
	Text string `json:"text" example:"Hello world."`
}

// HealthResponse reports liveness and whether the model is loaded
type HealthResponse struct {
	Status      string `json:"status" example:"ok"`
	ModelLoaded bool   `json:"model_loaded" example:"true"`
}
