package whisper_server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"voice-type/internal/app/api/provider"
)

const (
	providerName  = "whisper_server"
	inferencePath = "/inference"
)

// WhisperServerProvider implements transcription via HTTP to a whisper.cpp
// server instance, which keeps the model resident between requests.
type WhisperServerProvider struct {
	baseURL string
	config  provider.ProviderConfig
	client  *http.Client
	logger  *zap.Logger
}

// WhisperServerResponse represents the verbose_json response from whisper-server
type WhisperServerResponse struct {
	Text                        string                 `json:"text,omitempty"`
	Task                        string                 `json:"task,omitempty"`
	Language                    string                 `json:"language,omitempty"`
	Duration                    float64                `json:"duration,omitempty"`
	Segments                    []WhisperServerSegment `json:"segments,omitempty"`
	DetectedLanguageProbability float64                `json:"detected_language_probability,omitempty"`
}

// WhisperServerSegment represents a segment in verbose response
type WhisperServerSegment struct {
	ID    int     `json:"id"`
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// NewWhisperServerProvider creates a new whisper-server HTTP provider
func NewWhisperServerProvider(config provider.ProviderConfig, logger *zap.Logger) (*WhisperServerProvider, error) {
	if config.ServerURL == "" {
		return nil, fmt.Errorf("whisper_server provider requires WHISPER_SERVER_URL")
	}

	timeout := config.RequestTimeout
	if timeout == 0 {
		timeout = 10 * time.Minute
	}

	return &WhisperServerProvider{
		baseURL: strings.TrimRight(config.ServerURL, "/"),
		config:  config,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// Transcribe uploads the audio to /inference and returns the parsed segments
func (wsp *WhisperServerProvider) Transcribe(ctx context.Context, request *provider.TranscriptionRequest) (provider.SegmentIterator, error) {
	if request.InputFilePath == "" {
		return nil, &provider.TranscriptionError{Code: "invalid_input", Message: "input file path is required", Provider: providerName}
	}

	file, err := os.Open(request.InputFilePath)
	if err != nil {
		return nil, &provider.TranscriptionError{Code: "file_not_found", Message: "failed to open input file", Provider: providerName, Cause: err}
	}
	defer file.Close()

	body, contentType := wsp.streamMultipartForm(file, request)
	defer body.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, wsp.baseURL+inferencePath, body)
	if err != nil {
		return nil, &provider.TranscriptionError{Code: "request_creation_failed", Message: "failed to create HTTP request", Provider: providerName, Cause: err}
	}
	httpReq.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := wsp.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("whisper-server request interrupted: %w", ctxErr)
		}
		return nil, &provider.TranscriptionError{Code: "request_failed", Message: "HTTP request failed", Provider: providerName, Cause: err}
	}
	defer resp.Body.Close()

	responseData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.TranscriptionError{Code: "response_read_failed", Message: "failed to read response", Provider: providerName, Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &provider.TranscriptionError{
			Code:     "api_error",
			Message:  fmt.Sprintf("whisper-server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseData))),
			Provider: providerName,
		}
	}

	var parsed WhisperServerResponse
	if err := json.Unmarshal(responseData, &parsed); err != nil {
		return nil, &provider.TranscriptionError{Code: "response_parse_failed", Message: "failed to parse verbose JSON response", Provider: providerName, Cause: err}
	}

	wsp.logger.Debug("whisper-server transcription finished",
		zap.String("language", parsed.Language),
		zap.Int("segments", len(parsed.Segments)),
		zap.Int("response_size", len(responseData)),
		zap.Duration("latency", time.Since(start)),
	)

	return provider.NewSliceIterator(toSegments(parsed)), nil
}

// streamMultipartForm writes the form on a pipe so the audio is not buffered
// in memory. The returned reader must be closed by the caller.
func (wsp *WhisperServerProvider) streamMultipartForm(file *os.File, request *provider.TranscriptionRequest) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeForm(writer, file, request))
	}()

	return pr, writer.FormDataContentType()
}

func writeForm(writer *multipart.Writer, file *os.File, request *provider.TranscriptionRequest) error {
	part, err := writer.CreateFormFile("file", filepath.Base(request.InputFilePath))
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}

	language := request.LanguageHint()
	if language == "" {
		language = provider.LanguageAuto
	}

	params := [][2]string{
		{"response_format", "verbose_json"},
		{"temperature", "0.00"},
		{"language", language},
	}
	for _, p := range params {
		if err := writer.WriteField(p[0], p[1]); err != nil {
			return fmt.Errorf("failed to write field %s: %w", p[0], err)
		}
	}

	return writer.Close()
}

func toSegments(resp WhisperServerResponse) []provider.Segment {
	if len(resp.Segments) == 0 {
		if strings.TrimSpace(resp.Text) == "" {
			return nil
		}
		return []provider.Segment{{Text: resp.Text, End: seconds(resp.Duration)}}
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
	return segments
}

// GetProviderInfo returns provider metadata. The server does not expose
// which model it loaded, so the configured preset is reported.
func (wsp *WhisperServerProvider) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:        providerName,
		DisplayName: "Whisper.cpp Server",
		Type:        provider.ProviderTypeRemote,
		Model:       wsp.config.Model,
	}
}

func (wsp *WhisperServerProvider) Close() error {
	wsp.client.CloseIdleConnections()
	return nil
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
