package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake ffmpeg is a shell script")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestNeedsConversion(t *testing.T) {
	tests := map[string]bool{
		"clip.wav":   false,
		"clip.MP3":   false,
		"clip.ogg":   false,
		"clip.flac":  false,
		"clip.m4a":   true,
		"clip.webm":  true,
		"clip":       true,
		"/tmp/a.mp4": true,
	}
	for path, want := range tests {
		assert.Equal(t, want, NeedsConversion(path), path)
	}
}

func TestConvertTo16kHzWav(t *testing.T) {
	// Writes its arguments to the output file, which is the last argument
	ffmpeg := fakeFFmpeg(t, `for last; do :; done
echo "$*" > "$last"`)

	input := filepath.Join(t.TempDir(), "voicetype-123.m4a")
	require.NoError(t, os.WriteFile(input, []byte("m4a"), 0644))

	out, err := ConvertTo16kHzWav(context.Background(), ffmpeg, input)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(input), "voicetype-123_16khz.wav"), out)

	args, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(args), "-i "+input)
	assert.Contains(t, string(args), "-ar 16000 -ac 1")
}

func TestConvertTo16kHzWav_Failure(t *testing.T) {
	ffmpeg := fakeFFmpeg(t, `for last; do :; done
echo partial > "$last"
echo "Invalid data found when processing input" >&2
exit 1`)

	input := filepath.Join(t.TempDir(), "broken.webm")
	require.NoError(t, os.WriteFile(input, []byte("junk"), 0644))

	_, err := ConvertTo16kHzWav(context.Background(), ffmpeg, input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid data found when processing input")
	assert.NoFileExists(t, filepath.Join(filepath.Dir(input), "broken_16khz.wav"))
}

func TestConvertTo16kHzWav_ContextCancel(t *testing.T) {
	ffmpeg := fakeFFmpeg(t, `exec sleep 5`)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := ConvertTo16kHzWav(ctx, ffmpeg, filepath.Join(t.TempDir(), "a.m4a"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
