package whisper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	oaiclient "voice-type/internal/app/api/openai"
	"voice-type/internal/app/api/provider"
)

const providerName = "openai"

// RemoteTranscriber implements remote transcription using the OpenAI API.
type RemoteTranscriber struct {
	client *openai.Client
	model  string
	config provider.ProviderConfig
	logger *zap.Logger
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
func NewRemoteTranscriber(config provider.ProviderConfig, logger *zap.Logger) *RemoteTranscriber {
	model := config.OpenAI.Model
	if model == "" {
		model = openai.Whisper1
	}
	return &RemoteTranscriber{
		client: oaiclient.NewClient(config.OpenAI, config.RequestTimeout),
		model:  model,
		config: config,
		logger: logger,
	}
}

// Transcribe uploads the file and returns the segments of the verbose_json
// response. When the server omits segments the full text becomes a single
// segment.
func (rt *RemoteTranscriber) Transcribe(ctx context.Context, request *provider.TranscriptionRequest) (provider.SegmentIterator, error) {
	req := openai.AudioRequest{
		Model:    rt.model,
		FilePath: request.InputFilePath,
		Language: request.LanguageHint(),
		Format:   openai.AudioResponseFormatVerboseJSON,
	}

	start := time.Now()
	resp, err := rt.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, rt.handleAPIError(err)
	}

	rt.logger.Debug("Remote transcription finished",
		zap.String("model", rt.model),
		zap.String("detected_language", resp.Language),
		zap.Int("segments", len(resp.Segments)),
		zap.Duration("latency", time.Since(start)),
	)

	if len(resp.Segments) == 0 {
		return provider.NewSliceIterator([]provider.Segment{{
			End:  seconds(resp.Duration),
			Text: resp.Text,
		}}), nil
	}

	segments := make([]provider.Segment, 0, len(resp.Segments))
	for i, s := range resp.Segments {
		segments = append(segments, provider.Segment{
			Index: i,
			Start: seconds(s.Start),
			End:   seconds(s.End),
			Text:  s.Text,
		})
	}
	return provider.NewSliceIterator(segments), nil
}

func (rt *RemoteTranscriber) handleAPIError(err error) error {
	code := "api_error"

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	status := 0
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("openai transcription interrupted: %w", err)
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		code = "auth_failed"
	case http.StatusTooManyRequests:
		code = "rate_limited"
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		code = "invalid_input"
	}

	return &provider.TranscriptionError{
		Code:     code,
		Message:  "createTranscription failed",
		Provider: providerName,
		Cause:    err,
	}
}

// GetProviderInfo returns metadata about the remote model
func (rt *RemoteTranscriber) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:        providerName,
		DisplayName: "OpenAI Whisper API",
		Type:        provider.ProviderTypeRemote,
		Model:       rt.model,
	}
}

func (rt *RemoteTranscriber) Close() error {
	return nil
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
