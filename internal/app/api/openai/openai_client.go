package openai

import (
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"voice-type/internal/app/api/provider"
)

// NewClient builds an OpenAI client for the configured endpoint. BaseURL
// lets the same client talk to any OpenAI-compatible transcription server.
func NewClient(config provider.OpenAIConfig, timeout time.Duration) *openai.Client {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: timeout}
	}
	return openai.NewClientWithConfig(clientConfig)
}
