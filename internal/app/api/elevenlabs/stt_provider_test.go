package elevenlabs

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"voice-type/internal/app/api/provider"
)

func writeAudio(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("fake audio payload"), 0644))
	return path
}

func newProvider(t *testing.T, handler http.HandlerFunc) *STTProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewSTTProvider(provider.ProviderConfig{
		Backend: providerName,
		Model:   "small",
		ElevenLabs: provider.ElevenLabsConfig{
			APIKey:  "xi-test",
			BaseURL: server.URL + "/v1/",
		},
		RequestTimeout: 5 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	return p
}

func TestSTTProvider_Transcribe(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/speech-to-text", r.URL.Path)
		assert.Equal(t, "xi-test", r.Header.Get("xi-api-key"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "scribe_v1", r.FormValue("model_id"))
		assert.Equal(t, "de", r.FormValue("language_code"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "clip.wav", header.Filename)
		assert.Equal(t, "fake audio payload", string(data))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"language_code": "deu",
			"language_probability": 0.98,
			"text": "Hallo Welt. Wie geht's?",
			"words": [
				{"text": "Hallo", "start": 0.0, "end": 0.4, "type": "word"},
				{"text": " ", "start": 0.4, "end": 0.5, "type": "spacing"},
				{"text": "Welt.", "start": 0.5, "end": 1.0, "type": "word"},
				{"text": " ", "start": 1.0, "end": 1.2, "type": "spacing"},
				{"text": "(lacht)", "start": 1.2, "end": 1.5, "type": "audio_event"},
				{"text": "Wie", "start": 1.5, "end": 1.7, "type": "word"},
				{"text": " ", "start": 1.7, "end": 1.8, "type": "spacing"},
				{"text": "geht's?", "start": 1.8, "end": 2.3, "type": "word"}
			]
		}`))
	})

	it, err := p.Transcribe(context.Background(), &provider.TranscriptionRequest{
		InputFilePath: writeAudio(t, "clip.wav"),
		Language:      "de",
	})
	require.NoError(t, err)
	defer it.Close()

	segments, err := provider.Collect(it)
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, "Hallo Welt.", segments[0].Text)
	assert.Equal(t, time.Second, segments[0].End)
	assert.Equal(t, "Wie geht's?", segments[1].Text)
	assert.Equal(t, 1500*time.Millisecond, segments[1].Start)
	assert.Equal(t, 1, segments[1].Index)
	assert.Equal(t, "Hallo Welt. Wie geht's?", provider.JoinText(segments))
}

func TestSTTProvider_AutoLanguageTextOnly(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, present := r.MultipartForm.Value["language_code"]
		assert.False(t, present)
		w.Write([]byte(`{"language_code": "eng", "text": " just text "}`))
	})

	it, err := p.Transcribe(context.Background(), &provider.TranscriptionRequest{
		InputFilePath: writeAudio(t, "a.wav"),
		Language:      provider.LanguageAuto,
	})
	require.NoError(t, err)

	segments, err := provider.Collect(it)
	require.NoError(t, err)
	assert.Equal(t, "just text", provider.JoinText(segments))
}

func TestSTTProvider_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode string
	}{
		{name: "bad key", status: http.StatusUnauthorized, wantCode: "auth_failed"},
		{name: "rate limited", status: http.StatusTooManyRequests, wantCode: "rate_limited"},
		{name: "too large", status: http.StatusRequestEntityTooLarge, wantCode: "file_too_large"},
		{name: "server error", status: http.StatusBadGateway, wantCode: "api_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
				io.Copy(io.Discard, r.Body)
				http.Error(w, `{"detail":{"status":"nope"}}`, tt.status)
			})

			_, err := p.Transcribe(context.Background(), &provider.TranscriptionRequest{InputFilePath: writeAudio(t, "a.wav")})
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, provider.ErrorCode(err))
			assert.Contains(t, err.Error(), "nope")
		})
	}

	t.Run("missing file", func(t *testing.T) {
		p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("server must not be called")
		})

		_, err := p.Transcribe(context.Background(), &provider.TranscriptionRequest{InputFilePath: "/nonexistent/a.wav"})
		require.Error(t, err)
		assert.Equal(t, "file_not_found", provider.ErrorCode(err))
	})
}

func TestNewSTTProvider_Defaults(t *testing.T) {
	_, err := NewSTTProvider(provider.ProviderConfig{Backend: providerName}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ELEVENLABS_API_KEY")

	p, err := NewSTTProvider(provider.ProviderConfig{
		Backend:    providerName,
		ElevenLabs: provider.ElevenLabsConfig{APIKey: "k"},
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, defaultBaseURL, p.baseURL)

	info := p.GetProviderInfo()
	assert.Equal(t, "elevenlabs", info.Name)
	assert.Equal(t, defaultModel, info.Model)
	assert.Equal(t, provider.ProviderTypeRemote, info.Type)
}

func TestProviderRegistered(t *testing.T) {
	_, err := provider.CreateProvider(context.Background(), provider.ProviderConfig{
		Backend:    providerName,
		ElevenLabs: provider.ElevenLabsConfig{APIKey: "k"},
	}, zap.NewNop())
	require.NoError(t, err)
}
