package whisper_server

import (
	"context"

	"go.uber.org/zap"
	"voice-type/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider(providerName, createWhisperServerProvider)
}

func createWhisperServerProvider(ctx context.Context, config provider.ProviderConfig, logger *zap.Logger) (provider.TranscriptionProvider, error) {
	return NewWhisperServerProvider(config, logger)
}
