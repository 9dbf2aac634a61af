// Package dictate turns a push-to-talk hotkey into typed text: hold the key,
// speak, release, and the transcript from a voice-type server is typed into
// the focused window.
package dictate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
)

// Defaults for Session fields left zero
const (
	DefaultSampleRate  = 16000
	DefaultMinDuration = 500 * time.Millisecond
	DefaultInjectDelay = 100 * time.Millisecond
)

// NoSpeech is printed when the server returns an empty transcript
const NoSpeech = "(no speech detected)"

// EventType tells the session to start or stop recording
type EventType int

const (
	EventStart EventType = iota
	EventStop
)

// Event is emitted by a hotkey listener
type Event struct {
	Type EventType
}

// Recorder captures mono float32 samples from the microphone
type Recorder interface {
	Start() error
	// Stop ends the capture and returns what was recorded, nil when idle
	Stop() []float32
}

// Injector types text into the focused application
type Injector interface {
	Inject(text string) error
}

// Transcriber sends an audio file to the server. *client.Client satisfies it.
type Transcriber interface {
	Transcribe(ctx context.Context, path, language string, wrap func(r io.Reader, total int64) io.Reader) (string, error)
}

// Muter silences speaker output while recording. Nil disables muting.
type Muter interface {
	Mute(ctx context.Context) error
	Unmute(ctx context.Context) error
}

// Session runs one push-to-talk loop
type Session struct {
	Recorder    Recorder
	Injector    Injector
	Transcriber Transcriber
	Muter       Muter
	Logger      *zap.Logger

	// Language is sent with every clip; empty lets the server decide
	Language   string
	SampleRate int
	// Clips shorter than MinDuration are discarded without a request
	MinDuration time.Duration
	// InjectDelay gives the user time to release modifier keys before typing
	InjectDelay time.Duration
	TempDir     string
	// Status receives NoSpeech notices
	Status io.Writer

	recording bool
}

func (s *Session) defaults() {
	if s.SampleRate == 0 {
		s.SampleRate = DefaultSampleRate
	}
	if s.MinDuration == 0 {
		s.MinDuration = DefaultMinDuration
	}
	if s.InjectDelay == 0 {
		s.InjectDelay = DefaultInjectDelay
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	if s.Status == nil {
		s.Status = io.Discard
	}
}

// Run handles events until ctx is done or the channel closes. A clip is
// transcribed and injected before the next event is read. Failures of a
// single clip are logged and do not end the loop.
func (s *Session) Run(ctx context.Context, events <-chan Event) error {
	s.defaults()
	defer s.abort()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev.Type {
			case EventStart:
				s.start(ctx)
			case EventStop:
				s.stop(ctx)
			}
		}
	}
}

func (s *Session) start(ctx context.Context) {
	if s.recording {
		return
	}
	s.mute(ctx)
	if err := s.Recorder.Start(); err != nil {
		s.unmute(ctx)
		s.Logger.Error("Failed to start recording", zap.Error(err))
		return
	}
	s.recording = true
	s.Logger.Info("Recording")
}

func (s *Session) stop(ctx context.Context) {
	if !s.recording {
		return
	}
	samples := s.Recorder.Stop()
	s.recording = false
	s.unmute(ctx)

	duration := time.Duration(len(samples)) * time.Second / time.Duration(s.SampleRate)
	if duration < s.MinDuration {
		s.Logger.Info("Recording too short, skipping", zap.Duration("duration", duration))
		return
	}

	if err := s.process(ctx, samples); err != nil {
		s.Logger.Error("Dictation failed", zap.Duration("duration", duration), zap.Error(err))
	}
}

func (s *Session) process(ctx context.Context, samples []float32) error {
	file, err := os.CreateTemp(s.TempDir, "voicetype-*.wav")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(file.Name())

	err = EncodeWAV(file, samples, s.SampleRate)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("writing clip: %w", err)
	}

	start := time.Now()
	text, err := s.Transcriber.Transcribe(ctx, file.Name(), s.Language, nil)
	if err != nil {
		return fmt.Errorf("transcribing clip: %w", err)
	}
	s.Logger.Info("Transcribed", zap.String("text", text), zap.Duration("latency", time.Since(start)))

	if text == "" {
		fmt.Fprintln(s.Status, NoSpeech)
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.InjectDelay):
	}
	if err := s.Injector.Inject(text); err != nil {
		return fmt.Errorf("injecting text: %w", err)
	}
	return nil
}

// abort releases the microphone and speakers if the loop ends mid-recording
func (s *Session) abort() {
	if !s.recording {
		return
	}
	s.Recorder.Stop()
	s.recording = false
	// ctx is already done here
	s.unmute(context.Background())
}

func (s *Session) mute(ctx context.Context) {
	if s.Muter == nil {
		return
	}
	if err := s.Muter.Mute(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.Logger.Warn("Failed to mute output", zap.Error(err))
	}
}

func (s *Session) unmute(ctx context.Context) {
	if s.Muter == nil {
		return
	}
	if err := s.Muter.Unmute(ctx); err != nil {
		s.Logger.Warn("Failed to unmute output", zap.Error(err))
	}
}
