package transcribe

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"voice-type/internal/client"
)

func TestTranscribeCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer from-flag", r.Header.Get("Authorization"))
		assert.Equal(t, "auto", r.FormValue("language"))
		w.Write([]byte(`{"text":"hello there"}`))
	}))
	defer server.Close()

	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, client.SaveConfig(configFile, client.Config{APIURL: server.URL, APIToken: "from-file", Language: "auto"}))

	audio := filepath.Join(dir, "memo.wav")
	require.NoError(t, os.WriteFile(audio, []byte("RIFF"), 0644))

	var out, errOut bytes.Buffer
	Cmd.SetOut(&out)
	Cmd.SetErr(&errOut)
	Cmd.SetArgs([]string{"--config", configFile, "--token", "from-flag", "--quiet", audio})

	require.NoError(t, Cmd.Execute())
	assert.Equal(t, "hello there\n", out.String())
}

func TestTranscribeCommand_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"detail":"Model not loaded"}`))
	}))
	defer server.Close()

	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, client.SaveConfig(configFile, client.Config{APIURL: server.URL, APIToken: "tok", Language: "en"}))

	audio := filepath.Join(dir, "memo.wav")
	require.NoError(t, os.WriteFile(audio, []byte("RIFF"), 0644))

	var out bytes.Buffer
	Cmd.SetOut(&out)
	Cmd.SetErr(&bytes.Buffer{})
	Cmd.SetArgs([]string{"--config", configFile, "--quiet", audio})

	err := Cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Model not loaded")
	assert.Empty(t, out.String())
}
