package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"voice-type/internal/api/errors"
	"voice-type/internal/api/v1/dto"
	"voice-type/internal/app/api/provider"
	"voice-type/internal/config"
)

// DefaultUploadSuffix is used when the upload's filename has no extension
const DefaultUploadSuffix = ".wav"

const tempFilePrefix = "voicetype-"

// TranscriptionServiceImpl implements TranscriptionService. Each call spools
// the upload to a temp file, waits for one of a fixed number of workers and
// runs the engine on it.
type TranscriptionServiceImpl struct {
	engines         EngineSource
	metrics         provider.ProviderMetrics
	workers         *semaphore.Weighted
	tempDir         string
	timeout         time.Duration
	defaultLanguage string
	logger          *zap.Logger
}

// NewTranscriptionService creates a new transcription service
func NewTranscriptionService(
	engines EngineSource,
	metrics provider.ProviderMetrics,
	cfg config.TranscriptionConfig,
	logger *zap.Logger,
) *TranscriptionServiceImpl {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	language := cfg.DefaultLanguage
	if language == "" {
		language = config.DefaultLanguage
	}

	return &TranscriptionServiceImpl{
		engines:         engines,
		metrics:         metrics,
		workers:         semaphore.NewWeighted(int64(workers)),
		tempDir:         cfg.TempDir,
		timeout:         cfg.Timeout,
		defaultLanguage: language,
		logger:          logger,
	}
}

// Ready reports whether the engine is loaded
func (s *TranscriptionServiceImpl) Ready() bool {
	_, ok := s.engines.Provider()
	return ok
}

// Transcribe spools the upload, runs the engine and joins the segment texts
func (s *TranscriptionServiceImpl) Transcribe(ctx context.Context, req *dto.TranscribeRequest) (*dto.TranscribeResponse, error) {
	engine, ok := s.engines.Provider()
	if !ok {
		return nil, errors.NewServiceUnavailableError("Model not loaded")
	}

	language := req.Language
	if language == "" {
		language = s.defaultLanguage
	}

	path, err := s.spool(req)
	if err != nil {
		return nil, errors.NewTranscriptionFailedError(err)
	}
	defer s.remove(path)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.workers.Acquire(ctx, 1); err != nil {
		return nil, errors.NewTranscriptionFailedError(fmt.Errorf("waiting for a worker: %w", err))
	}
	defer s.workers.Release(1)

	info := engine.GetProviderInfo()
	start := time.Now()

	segments, err := s.run(ctx, engine, &provider.TranscriptionRequest{
		InputFilePath: path,
		Language:      language,
	})
	if err != nil {
		s.metrics.RecordFailure(info.Name, provider.ErrorCode(err))
		s.logger.Warn("Transcription failed",
			zap.String("provider", info.Name),
			zap.String("language", language),
			zap.Error(err),
		)
		return nil, errors.NewTranscriptionFailedError(err)
	}

	elapsed := time.Since(start)
	s.metrics.RecordSuccess(info.Name, elapsed, len(segments))
	s.logger.Debug("Transcription finished",
		zap.String("provider", info.Name),
		zap.String("language", language),
		zap.Int("segments", len(segments)),
		zap.Duration("elapsed", elapsed),
	)

	return &dto.TranscribeResponse{Text: provider.JoinText(segments)}, nil
}

func (s *TranscriptionServiceImpl) run(ctx context.Context, engine provider.TranscriptionProvider, req *provider.TranscriptionRequest) ([]provider.Segment, error) {
	it, err := engine.Transcribe(ctx, req)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	return provider.Collect(it)
}

// spool copies the whole upload into a uniquely named temp file whose suffix
// matches the upload's extension. The file is removed again on error.
func (s *TranscriptionServiceImpl) spool(req *dto.TranscribeRequest) (string, error) {
	f, err := os.CreateTemp(s.tempDir, tempFilePrefix+"*"+UploadSuffix(req.Filename))
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	_, err = io.Copy(f, req.Audio)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		s.remove(f.Name())
		return "", fmt.Errorf("saving upload: %w", err)
	}
	return f.Name(), nil
}

func (s *TranscriptionServiceImpl) remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to remove temp file", zap.String("path", path), zap.Error(err))
	}
}

// UploadSuffix returns the extension of filename including the dot, or
// DefaultUploadSuffix when there is none
func UploadSuffix(filename string) string {
	ext := filepath.Ext(filepath.Base(filename))
	if ext == "" || ext == "." || strings.ContainsAny(ext, `/\`) {
		return DefaultUploadSuffix
	}
	return ext
}
