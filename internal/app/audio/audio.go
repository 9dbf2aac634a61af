// Package audio normalizes uploads into input whisper.cpp can read.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// NativeFormats are decoded by whisper.cpp itself and need no conversion
var NativeFormats = []string{".wav", ".mp3", ".ogg", ".flac"}

// NeedsConversion reports whether path has an extension whisper.cpp cannot
// decode on its own (m4a, webm, mp4, ...).
func NeedsConversion(path string) bool {
	return !lo.Contains(NativeFormats, strings.ToLower(filepath.Ext(path)))
}

// ConvertTo16kHzWav transcodes inputFilePath to 16kHz mono PCM next to the
// input and returns the new path. The caller owns the output file.
func ConvertTo16kHzWav(ctx context.Context, ffmpegPath, inputFilePath string) (string, error) {
	outputFilePath := strings.TrimSuffix(inputFilePath, filepath.Ext(inputFilePath)) + "_16khz.wav"

	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-nostdin", "-y", "-loglevel", "error",
		"-i", inputFilePath,
		"-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1",
		outputFilePath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(outputFilePath)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("audio conversion interrupted: %w", ctxErr)
		}
		return "", fmt.Errorf("FFmpeg error: %v, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	return outputFilePath, nil
}
