package whisper_cpp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"voice-type/internal/app/api/provider"
)

// ModelBaseURL is where ggml model files are fetched from
var ModelBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"

// Presets lists the model sizes published as ggml files
var Presets = []string{
	"tiny", "tiny.en",
	"base", "base.en",
	"small", "small.en",
	"medium", "medium.en",
	"large-v1", "large-v2", "large-v3", "large-v3-turbo",
}

// ModelFileName maps a size preset and compute type to the ggml file name.
// int8 selects the q8_0 quantized weights.
func ModelFileName(preset, computeType string) (string, error) {
	if !lo.Contains(Presets, preset) {
		return "", fmt.Errorf("unknown whisper model preset %q (available: %v)", preset, Presets)
	}

	switch computeType {
	case provider.ComputeInt8:
		return fmt.Sprintf("ggml-%s-q8_0.bin", preset), nil
	case provider.ComputeFloat16, provider.ComputeFloat32, "":
		return fmt.Sprintf("ggml-%s.bin", preset), nil
	default:
		return "", fmt.Errorf("unsupported compute type %q", computeType)
	}
}

// DownloadModel fetches fileName into destDir and returns the final path.
// An existing non-empty file is kept as is. The body is written to a .tmp
// file first and renamed once complete. wrap, when set, can decorate the
// response body (progress reporting); it receives the content length.
func DownloadModel(ctx context.Context, fileName, destDir string, wrap func(r io.Reader, total int64) io.Reader) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("creating models dir: %w", err)
	}

	destPath := filepath.Join(destDir, fileName)
	if info, err := os.Stat(destPath); err == nil && info.Size() > 0 {
		return destPath, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ModelBaseURL+fileName, nil)
	if err != nil {
		return "", fmt.Errorf("building download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading whisper model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s failed: HTTP %d", fileName, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if wrap != nil {
		body = wrap(resp.Body, resp.ContentLength)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	_, err = io.Copy(f, body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing model file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("moving model file: %w", err)
	}

	return destPath, nil
}
