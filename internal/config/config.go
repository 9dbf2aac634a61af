package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"voice-type/internal/app/api/provider"
)

// Defaults for every setting read by Load
const (
	DefaultHost              = "0.0.0.0"
	DefaultPort              = 8000
	DefaultEnvironment       = "production"
	DefaultLogLevel          = "info"
	DefaultBackend           = "whisper_cpp"
	DefaultWhisperModel      = "small"
	DefaultDevice            = provider.DeviceCPU
	DefaultComputeType       = provider.ComputeInt8
	DefaultThreads           = 4
	DefaultModelDir          = "./models"
	DefaultWhisperCppBinary  = "whisper-cli"
	DefaultFFmpeg            = "ffmpeg"
	DefaultOpenAIModel       = "whisper-1"
	DefaultElevenLabsURL     = "https://api.elevenlabs.io/v1"
	DefaultElevenLabsModel   = "scribe_v1"
	DefaultLanguage          = "en"
	DefaultWorkers           = 2
	DefaultTranscribeTimeout = 10 * time.Minute
	DefaultMaxUploadSize     = 100 * 1000 * 1000
)

// Config is the complete server configuration
type Config struct {
	Environment string `validate:"oneof=development production test"`
	LogLevel    string `validate:"oneof=debug info warn error"`

	Server        ServerConfig
	Auth          AuthConfig
	Engine        provider.ProviderConfig
	Transcription TranscriptionConfig

	MetricsEnabled bool
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Host          string `validate:"required"`
	Port          int    `validate:"min=1,max=65535"`
	MaxUploadSize int64  `validate:"min=1"`
	AllowOrigins  []string
}

// AuthConfig holds the bearer token every transcription request must carry
type AuthConfig struct {
	APIToken string `validate:"required"`
}

// TranscriptionConfig tunes the request pipeline in front of the engine
type TranscriptionConfig struct {
	DefaultLanguage string `validate:"required"`
	TempDir         string
	Workers         int           `validate:"min=1,max=64"`
	Timeout         time.Duration `validate:"min=1s"`
}

// Addr is the listen address
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// IsDevelopment reports whether development logging and gin debug mode apply
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Load reads the configuration from the environment and validates it
func Load() (*Config, error) {
	env := &envReader{}

	cfg := &Config{
		Environment: env.String("ENVIRONMENT", DefaultEnvironment),
		LogLevel:    env.String("LOG_LEVEL", DefaultLogLevel),
		Server: ServerConfig{
			Host:          env.String("HOST", DefaultHost),
			Port:          env.Int("PORT", DefaultPort),
			MaxUploadSize: env.Bytes("MAX_UPLOAD_SIZE", DefaultMaxUploadSize),
			AllowOrigins:  env.List("CORS_ALLOW_ORIGINS", []string{"*"}),
		},
		Auth: AuthConfig{
			APIToken: env.String("API_TOKEN", ""),
		},
		Engine: provider.ProviderConfig{
			Backend:      env.String("WHISPER_BACKEND", DefaultBackend),
			Model:        env.String("WHISPER_MODEL", DefaultWhisperModel),
			Device:       env.String("WHISPER_DEVICE", DefaultDevice),
			ComputeType:  env.String("WHISPER_COMPUTE_TYPE", DefaultComputeType),
			Threads:      env.Int("WHISPER_THREADS", DefaultThreads),
			BinaryPath:   env.String("WHISPER_CPP_BINARY", DefaultWhisperCppBinary),
			ModelDir:     env.String("WHISPER_MODEL_DIR", DefaultModelDir),
			ModelPath:    env.String("WHISPER_CPP_MODEL", ""),
			AutoDownload: env.Bool("WHISPER_AUTO_DOWNLOAD", true),
			FFmpegPath:   env.String("WHISPER_FFMPEG", DefaultFFmpeg),
			ServerURL:    env.String("WHISPER_SERVER_URL", ""),
			OpenAI: provider.OpenAIConfig{
				APIKey:  env.String("OPENAI_API_KEY", ""),
				BaseURL: env.String("OPENAI_BASE_URL", ""),
				Model:   env.String("OPENAI_TRANSCRIBE_MODEL", DefaultOpenAIModel),
			},
			ElevenLabs: provider.ElevenLabsConfig{
				APIKey:  env.String("ELEVENLABS_API_KEY", ""),
				BaseURL: env.String("ELEVENLABS_BASE_URL", DefaultElevenLabsURL),
				Model:   env.String("ELEVENLABS_MODEL", DefaultElevenLabsModel),
			},
		},
		Transcription: TranscriptionConfig{
			DefaultLanguage: env.String("DEFAULT_LANGUAGE", DefaultLanguage),
			TempDir:         env.String("TEMP_DIR", os.TempDir()),
			Workers:         env.Int("TRANSCRIBE_WORKERS", DefaultWorkers),
			Timeout:         env.Duration("TRANSCRIBE_TIMEOUT", DefaultTranscribeTimeout),
		},
		MetricsEnabled: env.Bool("METRICS_ENABLED", true),
	}
	cfg.Engine.RequestTimeout = cfg.Transcription.Timeout

	if err := env.Err(); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
