package provider

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TranscriptionProvider is a loaded speech-recognition engine.
// One instance is created at startup and shared by every request, so
// implementations must be safe for concurrent use.
type TranscriptionProvider interface {
	// Transcribe starts decoding the audio file and returns its segments lazily.
	// The caller must Close the iterator.
	Transcribe(ctx context.Context, request *TranscriptionRequest) (SegmentIterator, error)

	// GetProviderInfo describes the loaded engine
	GetProviderInfo() ProviderInfo

	// Close releases whatever was acquired at construction
	Close() error
}

// SegmentIterator yields the segments of one transcription in order.
// Next returns io.EOF once the sequence is exhausted; it is single pass and
// cannot be restarted.
type SegmentIterator interface {
	Next() (Segment, error)
	Close() error
}

// ProviderCreator constructs a provider from configuration. Construction is
// where models are loaded, so it may block and should honour ctx.
type ProviderCreator func(ctx context.Context, config ProviderConfig, logger *zap.Logger) (TranscriptionProvider, error)

// ProviderMetrics records the outcome of transcriptions
type ProviderMetrics interface {
	// Record a successful transcription
	RecordSuccess(provider string, latency time.Duration, segments int)

	// Record a failed transcription
	RecordFailure(provider string, errorType string)
}
