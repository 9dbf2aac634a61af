package provider

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ProviderType defines where a provider runs
type ProviderType string

const (
	ProviderTypeLocal  ProviderType = "local"
	ProviderTypeRemote ProviderType = "remote"
)

// LanguageAuto asks the engine to detect the spoken language itself.
const LanguageAuto = "auto"

// TranscriptionRequest describes one audio file to transcribe
type TranscriptionRequest struct {
	InputFilePath string `json:"input_file_path"`

	// Language is an ISO 639-1 hint ("en", "de", ...) or LanguageAuto.
	Language string `json:"language,omitempty"`
}

// LanguageHint returns the language to pass to the engine, or "" when the
// engine should detect it.
func (r *TranscriptionRequest) LanguageHint() string {
	if r.Language == LanguageAuto {
		return ""
	}
	return r.Language
}

// Segment is one span of transcribed text
type Segment struct {
	Index int           `json:"index"`
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
	Text  string        `json:"text"`
}

// ProviderInfo contains metadata about a loaded provider
type ProviderInfo struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name"`
	Type        ProviderType `json:"type"`
	Model       string       `json:"model"`
	Device      string       `json:"device,omitempty"`
	ComputeType string       `json:"compute_type,omitempty"`
}

// TranscriptionError represents provider-specific errors
type TranscriptionError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Provider string `json:"provider"`
	Cause    error  `json:"-"`
}

func (e *TranscriptionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TranscriptionError) Unwrap() error {
	return e.Cause
}

// ErrorCode extracts a metrics-friendly error code
func ErrorCode(err error) string {
	var te *TranscriptionError
	switch {
	case errors.As(err, &te) && te.Code != "":
		return te.Code
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "unknown"
	}
}
