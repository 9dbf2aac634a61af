package whisper_cpp

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"voice-type/internal/app/api/provider"
)

// writeFakeBinary creates a shell script standing in for whisper-cli
func writeFakeBinary(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake whisper.cpp binary is a shell script")
	}

	path := filepath.Join(t.TempDir(), "whisper-cli")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func writeModel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ggml-small-q8_0.bin")
	require.NoError(t, os.WriteFile(path, []byte("weights"), 0644))
	return path
}

func newTestTranscriber(t *testing.T, script string) *LocalTranscriber {
	t.Helper()
	lt, err := NewLocalTranscriber(context.Background(), provider.ProviderConfig{
		Backend:     providerName,
		Model:       "small",
		Device:      provider.DeviceCPU,
		ComputeType: provider.ComputeInt8,
		Threads:     2,
		BinaryPath:  writeFakeBinary(t, script),
		ModelPath:   writeModel(t),
	}, zap.NewNop())
	require.NoError(t, err)
	return lt
}

func TestParseSegmentLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		wantOK bool
		want   provider.Segment
	}{
		{
			name:   "standard segment",
			line:   "[00:00:00.000 --> 00:00:02.480]   Hello world.",
			wantOK: true,
			want:   provider.Segment{Start: 0, End: 2480 * time.Millisecond, Text: "Hello world."},
		},
		{
			name:   "hours and minutes",
			line:   "[01:02:03.004 --> 01:02:05.000]  later on",
			wantOK: true,
			want: provider.Segment{
				Start: time.Hour + 2*time.Minute + 3*time.Second + 4*time.Millisecond,
				End:   time.Hour + 2*time.Minute + 5*time.Second,
				Text:  "later on",
			},
		},
		{
			name:   "empty text",
			line:   "[00:00:01.000 --> 00:00:02.000]",
			wantOK: true,
			want:   provider.Segment{Start: time.Second, End: 2 * time.Second},
		},
		{name: "log line", line: "whisper_init_from_file: loading model", wantOK: false},
		{name: "blank", line: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSegmentLine(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestLocalTranscriber_StreamsSegments(t *testing.T) {
	lt := newTestTranscriber(t, `echo "system_info: n_threads = 2"
echo "[00:00:00.000 --> 00:00:01.500]   Hello"
echo "[00:00:01.500 --> 00:00:03.000]   world."`)

	it, err := lt.Transcribe(context.Background(), &provider.TranscriptionRequest{InputFilePath: "/tmp/in.wav", Language: "en"})
	require.NoError(t, err)
	defer it.Close()

	segments, err := provider.Collect(it)
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, 0, segments[0].Index)
	assert.Equal(t, 1, segments[1].Index)
	assert.Equal(t, 1500*time.Millisecond, segments[1].Start)
	assert.Equal(t, "Hello world.", provider.JoinText(segments))

	_, err = it.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestLocalTranscriber_PassesArguments(t *testing.T) {
	// The script echoes its arguments back as a segment
	lt := newTestTranscriber(t, `echo "[00:00:00.000 --> 00:00:01.000] $*"`)

	it, err := lt.Transcribe(context.Background(), &provider.TranscriptionRequest{InputFilePath: "/tmp/in.mp3", Language: "de"})
	require.NoError(t, err)
	segments, err := provider.Collect(it)
	require.NoError(t, err)
	require.Len(t, segments, 1)

	args := segments[0].Text
	assert.Contains(t, args, "-m "+lt.ModelPath())
	assert.Contains(t, args, "-f /tmp/in.mp3")
	assert.Contains(t, args, "-l de")
	assert.Contains(t, args, "-t 2")
	assert.Contains(t, args, "--no-prints")
	assert.Contains(t, args, "--no-gpu")
}

func TestLocalTranscriber_AutoLanguage(t *testing.T) {
	lt := newTestTranscriber(t, `echo "[00:00:00.000 --> 00:00:01.000] $*"`)

	it, err := lt.Transcribe(context.Background(), &provider.TranscriptionRequest{InputFilePath: "/tmp/in.wav", Language: provider.LanguageAuto})
	require.NoError(t, err)
	segments, err := provider.Collect(it)
	require.NoError(t, err)
	assert.Contains(t, provider.JoinText(segments), "-l auto")
}

func TestLocalTranscriber_ProcessFailure(t *testing.T) {
	lt := newTestTranscriber(t, `echo "loading model" >&2
echo "error: failed to read audio file" >&2
exit 3`)

	it, err := lt.Transcribe(context.Background(), &provider.TranscriptionRequest{InputFilePath: "/tmp/corrupt.wav", Language: "en"})
	require.NoError(t, err)

	_, err = provider.Collect(it)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error: failed to read audio file")
	assert.Equal(t, "decode_failed", provider.ErrorCode(err))
}

func TestLocalTranscriber_ContextCancel(t *testing.T) {
	lt := newTestTranscriber(t, `exec sleep 5`)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	it, err := lt.Transcribe(ctx, &provider.TranscriptionRequest{InputFilePath: "/tmp/in.wav", Language: "en"})
	require.NoError(t, err)

	_, err = provider.Collect(it)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestLocalTranscriber_CloseBeforeDrain(t *testing.T) {
	lt := newTestTranscriber(t, `echo "[00:00:00.000 --> 00:00:01.000] first"
exec sleep 5`)

	it, err := lt.Transcribe(context.Background(), &provider.TranscriptionRequest{InputFilePath: "/tmp/in.wav", Language: "en"})
	require.NoError(t, err)

	seg, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, "first", seg.Text)

	done := make(chan struct{})
	go func() {
		it.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not stop the running process")
	}
}

func TestNewLocalTranscriber_Validation(t *testing.T) {
	t.Run("missing binary", func(t *testing.T) {
		_, err := NewLocalTranscriber(context.Background(), provider.ProviderConfig{
			BinaryPath: filepath.Join(t.TempDir(), "does-not-exist"),
			ModelPath:  writeModel(t),
		}, zap.NewNop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "binary")
	})

	t.Run("explicit model path missing", func(t *testing.T) {
		_, err := NewLocalTranscriber(context.Background(), provider.ProviderConfig{
			BinaryPath:   writeFakeBinary(t, "true"),
			ModelPath:    filepath.Join(t.TempDir(), "missing.bin"),
			AutoDownload: true,
		}, zap.NewNop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing.bin")
	})

	t.Run("preset model missing without auto download", func(t *testing.T) {
		_, err := NewLocalTranscriber(context.Background(), provider.ProviderConfig{
			Model:       "small",
			ComputeType: provider.ComputeInt8,
			BinaryPath:  writeFakeBinary(t, "true"),
			ModelDir:    t.TempDir(),
		}, zap.NewNop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ggml-small-q8_0.bin")
	})

	t.Run("preset resolved from model dir", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "ggml-base.en.bin"), []byte("w"), 0644))

		lt, err := NewLocalTranscriber(context.Background(), provider.ProviderConfig{
			Model:       "base.en",
			Device:      provider.DeviceCPU,
			ComputeType: provider.ComputeFloat16,
			BinaryPath:  writeFakeBinary(t, "true"),
			ModelDir:    dir,
		}, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "ggml-base.en.bin"), lt.ModelPath())

		info := lt.GetProviderInfo()
		assert.Equal(t, "whisper_cpp", info.Name)
		assert.Equal(t, "base.en", info.Model)
		assert.Equal(t, provider.ProviderTypeLocal, info.Type)
	})
}

func TestLocalTranscriber_ConvertsUnsupportedFormats(t *testing.T) {
	// ffmpeg stand-in writes a marker to its output file, the last argument
	ffmpeg := writeFakeBinary(t, `for last; do :; done
echo converted > "$last"`)

	lt, err := NewLocalTranscriber(context.Background(), provider.ProviderConfig{
		Model:       "small",
		Device:      provider.DeviceCPU,
		ComputeType: provider.ComputeInt8,
		Threads:     1,
		BinaryPath:  writeFakeBinary(t, `echo "[00:00:00.000 --> 00:00:01.000] $*"`),
		ModelPath:   writeModel(t),
		FFmpegPath:  ffmpeg,
	}, zap.NewNop())
	require.NoError(t, err)

	input := filepath.Join(t.TempDir(), "voicetype-1.m4a")
	require.NoError(t, os.WriteFile(input, []byte("m4a"), 0644))
	wav := filepath.Join(filepath.Dir(input), "voicetype-1_16khz.wav")

	it, err := lt.Transcribe(context.Background(), &provider.TranscriptionRequest{InputFilePath: input, Language: "en"})
	require.NoError(t, err)
	assert.FileExists(t, wav)

	segments, err := provider.Collect(it)
	require.NoError(t, err)
	require.NoError(t, it.Close())
	assert.Contains(t, provider.JoinText(segments), "-f "+wav)
	assert.NoFileExists(t, wav)
	assert.FileExists(t, input)
}

func TestLocalTranscriber_ConversionFailure(t *testing.T) {
	ffmpeg := writeFakeBinary(t, `echo "moov atom not found" >&2
exit 1`)

	lt, err := NewLocalTranscriber(context.Background(), provider.ProviderConfig{
		BinaryPath: writeFakeBinary(t, "true"),
		ModelPath:  writeModel(t),
		FFmpegPath: ffmpeg,
	}, zap.NewNop())
	require.NoError(t, err)

	_, err = lt.Transcribe(context.Background(), &provider.TranscriptionRequest{InputFilePath: "/tmp/missing.m4a", Language: "en"})
	require.Error(t, err)
	assert.Equal(t, "decode_failed", provider.ErrorCode(err))
	assert.Contains(t, err.Error(), "moov atom not found")
}
