// Package recorder captures microphone audio with miniaudio.
package recorder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
)

// Recorder captures mono float32 samples from the default input device
type Recorder struct {
	ctx        *malgo.AllocatedContext
	device     *malgo.Device
	sampleRate uint32

	mu        sync.Mutex
	buf       []float32
	recording bool
}

// New initializes the audio backend. Call Close when done.
func New(sampleRate uint32) (*Recorder, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing audio context: %w", err)
	}
	return &Recorder{ctx: ctx, sampleRate: sampleRate}, nil
}

// Start opens the capture device and begins buffering samples
func (r *Recorder) Start() error {
	r.mu.Lock()
	if r.recording {
		r.mu.Unlock()
		return errors.New("already recording")
	}
	r.buf = r.buf[:0]
	r.recording = true
	r.mu.Unlock()

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatF32
	cfg.Capture.Channels = 1
	cfg.SampleRate = r.sampleRate

	device, err := malgo.InitDevice(r.ctx.Context, cfg, malgo.DeviceCallbacks{Data: r.onData})
	if err == nil {
		if err = device.Start(); err != nil {
			device.Uninit()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.recording = false
		return fmt.Errorf("starting capture device: %w", err)
	}
	r.device = device
	return nil
}

// Stop closes the device and returns a copy of the captured samples
func (r *Recorder) Stop() []float32 {
	r.mu.Lock()
	device := r.device
	r.device = nil
	wasRecording := r.recording
	r.recording = false
	r.mu.Unlock()

	if !wasRecording {
		return nil
	}
	// Uninit waits for in-flight callbacks, which take mu
	if device != nil {
		device.Uninit()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]float32, len(r.buf))
	copy(out, r.buf)
	return out
}

// Close releases the device and the audio context
func (r *Recorder) Close() error {
	r.Stop()
	if err := r.ctx.Uninit(); err != nil {
		return fmt.Errorf("uninitializing audio context: %w", err)
	}
	r.ctx.Free()
	return nil
}

func (r *Recorder) onData(_, input []byte, frameCount uint32) {
	samples := bytesToFloat32(input, frameCount)

	r.mu.Lock()
	if r.recording {
		r.buf = append(r.buf, samples...)
	}
	r.mu.Unlock()
}

// bytesToFloat32 decodes little-endian float32 samples, stopping early when
// data is shorter than count samples
func bytesToFloat32(data []byte, count uint32) []float32 {
	n := min(int(count), len(data)/4)
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return samples
}
