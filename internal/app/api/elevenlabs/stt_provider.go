package elevenlabs

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
	providerName   = "elevenlabs"
	defaultBaseURL = "https://api.elevenlabs.io/v1"
	defaultModel   = "scribe_v1"
)

// STTProvider transcribes through the ElevenLabs Speech-to-Text API
type STTProvider struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// Response is the JSON body returned by POST /speech-to-text
type Response struct {
	LanguageCode        string  `json:"language_code"`
	LanguageProbability float64 `json:"language_probability"`
	Text                string  `json:"text"`
	Words               []Word  `json:"words"`
}

// Word is one timed token. Type is "word", "spacing" or "audio_event".
type Word struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Type  string  `json:"type"`
}

// NewSTTProvider creates an ElevenLabs provider
func NewSTTProvider(config provider.ProviderConfig, logger *zap.Logger) (*STTProvider, error) {
	el := config.ElevenLabs
	if el.APIKey == "" {
		return nil, fmt.Errorf("elevenlabs provider requires ELEVENLABS_API_KEY")
	}
	if el.BaseURL == "" {
		el.BaseURL = defaultBaseURL
	}
	if el.Model == "" {
		el.Model = defaultModel
	}

	timeout := config.RequestTimeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}

	return &STTProvider{
		baseURL: strings.TrimRight(el.BaseURL, "/"),
		apiKey:  el.APIKey,
		model:   el.Model,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// Transcribe uploads the audio and groups the returned words into
// sentence segments
func (p *STTProvider) Transcribe(ctx context.Context, request *provider.TranscriptionRequest) (provider.SegmentIterator, error) {
	if request.InputFilePath == "" {
		return nil, &provider.TranscriptionError{Code: "invalid_input", Message: "input file path is required", Provider: providerName}
	}

	file, err := os.Open(request.InputFilePath)
	if err != nil {
		return nil, &provider.TranscriptionError{Code: "file_not_found", Message: "failed to open input file", Provider: providerName, Cause: err}
	}
	defer file.Close()

	pr, pw := io.Pipe()
	defer pr.Close()
	writer := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(p.writeForm(writer, file, request))
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/speech-to-text", pr)
	if err != nil {
		return nil, &provider.TranscriptionError{Code: "request_creation_failed", Message: "failed to create HTTP request", Provider: providerName, Cause: err}
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("xi-api-key", p.apiKey)

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("elevenlabs request interrupted: %w", ctxErr)
		}
		return nil, &provider.TranscriptionError{Code: "network_error", Message: "failed to call ElevenLabs API", Provider: providerName, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.TranscriptionError{Code: "response_read_failed", Message: "failed to read response", Provider: providerName, Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpError(resp.StatusCode, body)
	}

	var parsed Response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &provider.TranscriptionError{Code: "response_parse_failed", Message: "failed to parse API response", Provider: providerName, Cause: err}
	}

	p.logger.Debug("ElevenLabs transcription finished",
		zap.String("model", p.model),
		zap.String("language", parsed.LanguageCode),
		zap.Int("words", len(parsed.Words)),
		zap.Duration("latency", time.Since(start)),
	)

	return provider.NewSliceIterator(toSegments(parsed)), nil
}

func (p *STTProvider) writeForm(writer *multipart.Writer, file *os.File, request *provider.TranscriptionRequest) error {
	if err := writer.WriteField("model_id", p.model); err != nil {
		return err
	}
	// ElevenLabs detects the language when language_code is absent
	if language := request.LanguageHint(); language != "" {
		if err := writer.WriteField("language_code", language); err != nil {
			return err
		}
	}

	part, err := writer.CreateFormFile("file", filepath.Base(request.InputFilePath))
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}
	return writer.Close()
}

func httpError(status int, body []byte) error {
	code := "api_error"
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		code = "auth_failed"
	case http.StatusTooManyRequests:
		code = "rate_limited"
	case http.StatusRequestEntityTooLarge:
		code = "file_too_large"
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		code = "invalid_input"
	}
	return &provider.TranscriptionError{
		Code:     code,
		Message:  fmt.Sprintf("ElevenLabs returned status %d: %s", status, strings.TrimSpace(string(body))),
		Provider: providerName,
	}
}

// toSegments splits the word stream at sentence-ending punctuation. Audio
// events such as "(laughter)" are dropped.
func toSegments(resp Response) []provider.Segment {
	if len(resp.Words) == 0 {
		if strings.TrimSpace(resp.Text) == "" {
			return nil
		}
		return []provider.Segment{{Text: strings.TrimSpace(resp.Text)}}
	}

	var (
		segments []provider.Segment
		current  strings.Builder
		start    float64
		end      float64
		open     bool
	)
	flush := func() {
		if text := strings.TrimSpace(current.String()); text != "" {
			segments = append(segments, provider.Segment{
				Index: len(segments),
				Start: seconds(start),
				End:   seconds(end),
				Text:  text,
			})
		}
		current.Reset()
		open = false
	}

	for _, w := range resp.Words {
		switch w.Type {
		case "audio_event":
			continue
		case "spacing":
			if open {
				current.WriteString(w.Text)
			}
			continue
		}
		if !open {
			start = w.Start
			open = true
		}
		current.WriteString(w.Text)
		end = w.End
		if strings.HasSuffix(w.Text, ".") || strings.HasSuffix(w.Text, "?") || strings.HasSuffix(w.Text, "!") {
			flush()
		}
	}
	flush()
	return segments
}

// GetProviderInfo returns provider metadata
func (p *STTProvider) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:        providerName,
		DisplayName: "ElevenLabs Speech-to-Text",
		Type:        provider.ProviderTypeRemote,
		Model:       p.model,
	}
}

func (p *STTProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
