package whisper_cpp

import (
	"context"

	"go.uber.org/zap"
	"voice-type/internal/app/api/provider"
)

func init() {
	// Register whisper_cpp provider with the factory
	provider.RegisterProvider(providerName, createWhisperCppProvider)
}

// createWhisperCppProvider creates a whisper.cpp provider from configuration
func createWhisperCppProvider(ctx context.Context, config provider.ProviderConfig, logger *zap.Logger) (provider.TranscriptionProvider, error) {
	return NewLocalTranscriber(ctx, config, logger)
}
