package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"voice-type/internal/client"
)

// newCmd gives each test fresh flag state
func newCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	})

	cmd := &cobra.Command{}
	cmd.Flags().AddFlagSet(rootCmd.Flags())
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	cfg := client.DefaultConfig()
	cfg.APIToken = "from-file"
	require.NoError(t, client.SaveConfig(file, cfg))

	got, path, err := loadConfig(newCmd(t, "--config", file, "--hotkey", "ctrl+alt+d", "--mode", "toggle", "--no-mute"))
	require.NoError(t, err)
	assert.Equal(t, file, path)
	assert.Equal(t, "from-file", got.APIToken)
	assert.Equal(t, "ctrl+alt+d", got.Hotkey)
	assert.Equal(t, "toggle", got.HotkeyMode)
	assert.Equal(t, client.DefaultInjectMethod, got.InjectMethod)
	assert.False(t, got.MuteOutput)
}

func TestLoadConfig_CreatesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	got, path, err := loadConfig(newCmd(t))
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, client.DefaultHotkey, got.Hotkey)
	assert.True(t, got.MuteOutput)
}

func TestCheckServer(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "loading",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"ok","model_loaded":false}`))
			},
			want: "Server is up but the model is still loading",
		},
		{
			name: "down",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			want: "Server is not reachable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			core, logs := observer.New(zap.WarnLevel)
			checkServer(context.Background(), client.New(server.URL, "t", time.Second), zap.New(core))

			require.Equal(t, 1, logs.Len())
			assert.Equal(t, tt.want, logs.All()[0].Message)
		})
	}
}
