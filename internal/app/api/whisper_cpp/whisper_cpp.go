package whisper_cpp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"voice-type/internal/app/api/provider"
	"voice-type/internal/app/audio"
)

const providerName = "whisper_cpp"

// processWaitDelay bounds how long Wait blocks on output pipes held open by
// grandchildren after the process itself has exited.
const processWaitDelay = 2 * time.Second

// LocalTranscriber runs the whisper.cpp command line binary against a model
// file resolved once at construction.
type LocalTranscriber struct {
	binaryPath string
	modelPath  string
	ffmpegPath string
	config     provider.ProviderConfig
	logger     *zap.Logger
}

// NewLocalTranscriber resolves the binary and model file, downloading the
// model when it is missing and auto download is enabled.
func NewLocalTranscriber(ctx context.Context, config provider.ProviderConfig, logger *zap.Logger) (*LocalTranscriber, error) {
	binaryPath, err := exec.LookPath(config.BinaryPath)
	if err != nil {
		return nil, fmt.Errorf("whisper.cpp binary %q not found: %w", config.BinaryPath, err)
	}

	modelPath := config.ModelPath
	if modelPath == "" {
		fileName, err := ModelFileName(config.Model, config.ComputeType)
		if err != nil {
			return nil, err
		}
		modelPath = filepath.Join(config.ModelDir, fileName)
	}

	if _, err := os.Stat(modelPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) || config.ModelPath != "" || !config.AutoDownload {
			return nil, fmt.Errorf("whisper model not available at %s: %w", modelPath, err)
		}

		logger.Info("Downloading whisper model",
			zap.String("file", filepath.Base(modelPath)),
			zap.String("dir", config.ModelDir),
		)
		if _, err := DownloadModel(ctx, filepath.Base(modelPath), config.ModelDir, nil); err != nil {
			return nil, err
		}
	}

	var ffmpegPath string
	if config.FFmpegPath != "" {
		if ffmpegPath, err = exec.LookPath(config.FFmpegPath); err != nil {
			logger.Warn("ffmpeg not found, uploads are limited to wav, mp3, ogg and flac",
				zap.String("ffmpeg", config.FFmpegPath))
			ffmpegPath = ""
		}
	}

	return &LocalTranscriber{
		binaryPath: binaryPath,
		modelPath:  modelPath,
		ffmpegPath: ffmpegPath,
		config:     config,
		logger:     logger,
	}, nil
}

// Transcribe starts whisper.cpp on the input file. Segments are read from the
// process's stdout as they are printed.
func (lt *LocalTranscriber) Transcribe(ctx context.Context, request *provider.TranscriptionRequest) (provider.SegmentIterator, error) {
	if request.InputFilePath == "" {
		return nil, &provider.TranscriptionError{
			Code:     "invalid_input",
			Message:  "input file path is required",
			Provider: providerName,
		}
	}

	inputPath := request.InputFilePath
	var converted string
	if lt.ffmpegPath != "" && audio.NeedsConversion(inputPath) {
		var err error
		if converted, err = audio.ConvertTo16kHzWav(ctx, lt.ffmpegPath, inputPath); err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			return nil, &provider.TranscriptionError{Code: "decode_failed", Message: "failed to convert audio", Provider: providerName, Cause: err}
		}
		inputPath = converted
	}

	args := lt.buildArgs(inputPath, request.LanguageHint())
	command := exec.CommandContext(ctx, lt.binaryPath, args...)
	command.WaitDelay = processWaitDelay

	stream := &segmentStream{ctx: ctx, command: command, converted: converted}
	command.Stderr = &stream.stderr

	stdout, err := command.StdoutPipe()
	if err != nil {
		stream.removeConverted()
		return nil, &provider.TranscriptionError{Code: "exec_failed", Message: "failed to attach stdout", Provider: providerName, Cause: err}
	}

	lt.logger.Debug("Running transcription command",
		zap.String("binary", lt.binaryPath),
		zap.Strings("args", args),
	)

	if err := command.Start(); err != nil {
		stream.removeConverted()
		return nil, &provider.TranscriptionError{Code: "exec_failed", Message: "failed to start whisper.cpp", Provider: providerName, Cause: err}
	}

	stream.scanner = bufio.NewScanner(stdout)
	return stream, nil
}

func (lt *LocalTranscriber) buildArgs(inputPath, language string) []string {
	if language == "" {
		language = provider.LanguageAuto
	}

	args := []string{
		"-m", lt.modelPath,
		"-f", inputPath,
		"-l", language,
		"-t", strconv.Itoa(lt.config.Threads),
		"--no-prints",
	}
	if lt.config.Device == provider.DeviceCPU {
		args = append(args, "--no-gpu")
	}
	return args
}

// GetProviderInfo returns metadata about the loaded model
func (lt *LocalTranscriber) GetProviderInfo() provider.ProviderInfo {
	model := lt.config.Model
	if lt.config.ModelPath != "" {
		model = filepath.Base(lt.modelPath)
	}
	return provider.ProviderInfo{
		Name:        providerName,
		DisplayName: "Whisper.cpp (Local)",
		Type:        provider.ProviderTypeLocal,
		Model:       model,
		Device:      lt.config.Device,
		ComputeType: lt.config.ComputeType,
	}
}

// ModelPath is the model file passed to every invocation
func (lt *LocalTranscriber) ModelPath() string {
	return lt.modelPath
}

// Close is a no-op; each transcription owns its own process.
func (lt *LocalTranscriber) Close() error {
	return nil
}

// segmentStream adapts a running whisper.cpp process to provider.SegmentIterator
type segmentStream struct {
	ctx     context.Context
	command *exec.Cmd
	scanner *bufio.Scanner
	stderr  bytes.Buffer
	index   int

	// converted is an ffmpeg output owned by this stream, removed once the
	// process has been reaped
	converted string

	waitOnce sync.Once
	waitErr  error
}

func (s *segmentStream) Next() (provider.Segment, error) {
	for s.scanner.Scan() {
		seg, ok := ParseSegmentLine(s.scanner.Text())
		if !ok {
			continue
		}
		seg.Index = s.index
		s.index++
		return seg, nil
	}

	if err := s.scanner.Err(); err != nil {
		s.Close()
		return provider.Segment{}, &provider.TranscriptionError{Code: "read_failed", Message: "failed to read whisper.cpp output", Provider: providerName, Cause: err}
	}

	if err := s.wait(); err != nil {
		return provider.Segment{}, err
	}
	return provider.Segment{}, io.EOF
}

// Close kills the process if it is still running and reaps it.
func (s *segmentStream) Close() error {
	s.waitOnce.Do(func() {
		if s.command.ProcessState == nil && s.command.Process != nil {
			_ = s.command.Process.Kill()
		}
		_ = s.command.Wait()
		s.removeConverted()
		s.waitErr = io.ErrClosedPipe
	})
	return nil
}

func (s *segmentStream) removeConverted() {
	if s.converted != "" {
		os.Remove(s.converted)
		s.converted = ""
	}
}

func (s *segmentStream) wait() error {
	s.waitOnce.Do(func() {
		err := s.command.Wait()
		s.removeConverted()
		if ctxErr := s.ctx.Err(); ctxErr != nil {
			s.waitErr = fmt.Errorf("whisper.cpp interrupted: %w", ctxErr)
			return
		}
		if err != nil {
			detail := strings.TrimSpace(s.stderr.String())
			if detail == "" {
				detail = err.Error()
			}
			s.waitErr = &provider.TranscriptionError{
				Code:     "decode_failed",
				Message:  fmt.Sprintf("whisper.cpp failed: %s", lastLine(detail)),
				Provider: providerName,
				Cause:    err,
			}
		}
	})
	return s.waitErr
}

var segmentLine = regexp.MustCompile(`^\[(\d{2}):(\d{2}):(\d{2})\.(\d{3}) --> (\d{2}):(\d{2}):(\d{2})\.(\d{3})\]\s*(.*)$`)

// ParseSegmentLine parses one line of whisper.cpp output of the form
// "[00:00:00.000 --> 00:00:02.480]   Hello world". Lines without a timestamp
// prefix are reported as not ok.
func ParseSegmentLine(line string) (provider.Segment, bool) {
	m := segmentLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return provider.Segment{}, false
	}
	return provider.Segment{
		Start: timestamp(m[1], m[2], m[3], m[4]),
		End:   timestamp(m[5], m[6], m[7], m[8]),
		Text:  strings.TrimSpace(m[9]),
	}, true
}

func timestamp(h, m, s, ms string) time.Duration {
	atoi := func(v string) time.Duration {
		n, _ := strconv.Atoi(v)
		return time.Duration(n)
	}
	return atoi(h)*time.Hour + atoi(m)*time.Minute + atoi(s)*time.Second + atoi(ms)*time.Millisecond
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
