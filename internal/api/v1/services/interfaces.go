package services

import (
	"context"

	"voice-type/internal/api/v1/dto"
	"voice-type/internal/app/api/provider"
)

// TranscriptionService defines the interface for transcription operations
type TranscriptionService interface {
	// Transcribe runs one upload through the loaded engine. It returns an
	// *errors.APIError of kind service_unavailable when no engine is loaded.
	Transcribe(ctx context.Context, req *dto.TranscribeRequest) (*dto.TranscribeResponse, error)

	// Ready reports whether the engine is loaded
	Ready() bool
}

// EngineSource hands out the loaded engine. loader.Handle implements it.
type EngineSource interface {
	Provider() (provider.TranscriptionProvider, bool)
}
