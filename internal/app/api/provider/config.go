package provider

import "time"

// Devices an engine can be bound to
const (
	DeviceCPU  = "cpu"
	DeviceGPU  = "gpu"
	DeviceAuto = "auto"
)

// Compute types. int8 selects quantized weights.
const (
	ComputeInt8    = "int8"
	ComputeFloat16 = "float16"
	ComputeFloat32 = "float32"
)

// ProviderConfig is everything needed to construct one engine. Only the
// fields of the selected backend are consulted.
type ProviderConfig struct {
	// Backend is the registered provider name (whisper_cpp, openai, whisper_server, elevenlabs)
	Backend string `validate:"required"`

	// Model is the size preset (tiny, base, small, medium, large-v3, ...)
	Model       string `validate:"required"`
	Device      string `validate:"oneof=cpu gpu auto"`
	ComputeType string `validate:"oneof=int8 float16 float32"`
	Threads     int    `validate:"min=1,max=256"`

	// whisper.cpp
	BinaryPath   string
	ModelDir     string
	ModelPath    string
	AutoDownload bool
	// FFmpegPath converts formats whisper.cpp cannot read; empty disables it
	FFmpegPath string

	// whisper.cpp server
	ServerURL string

	// OpenAI-compatible API
	OpenAI OpenAIConfig

	// ElevenLabs Speech-to-Text API
	ElevenLabs ElevenLabsConfig

	// RequestTimeout bounds a single call to a remote backend
	RequestTimeout time.Duration
}

// OpenAIConfig configures the OpenAI-compatible transcription backend
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// ElevenLabsConfig configures the ElevenLabs Speech-to-Text backend
type ElevenLabsConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}
