package elevenlabs

import (
	"context"

	"go.uber.org/zap"
	"voice-type/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider(providerName, createElevenLabsProvider)
}

func createElevenLabsProvider(ctx context.Context, config provider.ProviderConfig, logger *zap.Logger) (provider.TranscriptionProvider, error) {
	return NewSTTProvider(config, logger)
}
