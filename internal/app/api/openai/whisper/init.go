package whisper

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"voice-type/internal/app/api/provider"
)

func init() {
	// Register openai provider with the factory
	provider.RegisterProvider(providerName, createOpenAIProvider)
}

// createOpenAIProvider creates an OpenAI Whisper provider from configuration.
// An API key is required unless a custom base URL points at a server that
// does not check one.
func createOpenAIProvider(ctx context.Context, config provider.ProviderConfig, logger *zap.Logger) (provider.TranscriptionProvider, error) {
	if config.OpenAI.APIKey == "" && config.OpenAI.BaseURL == "" {
		return nil, errors.New("openai provider requires OPENAI_API_KEY")
	}
	return NewRemoteTranscriber(config, logger), nil
}
