// Package loader owns the process-wide transcription engine. The engine is
// loaded once after startup and read concurrently by every request.
package loader

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"voice-type/internal/app/api/provider"
)

// ErrAlreadyLoaded is returned when a second engine is installed
var ErrAlreadyLoaded = errors.New("transcription engine already loaded")

// ErrClosed is returned when an engine is installed after Close
var ErrClosed = errors.New("engine handle closed")

// Handle holds the engine once it is loaded. Before that Provider reports
// not ok, which the API surfaces as model_loaded=false and 503.
type Handle struct {
	mu       sync.RWMutex
	provider provider.TranscriptionProvider
	closed   bool
	loaded   prometheus.Gauge
}

// NewHandle creates an empty handle. A model_loaded gauge is registered on reg
// when it is non-nil.
func NewHandle(reg prometheus.Registerer) *Handle {
	h := &Handle{
		loaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voicetype",
			Name:      "model_loaded",
			Help:      "1 when the transcription engine is loaded",
		}),
	}
	if reg != nil {
		reg.MustRegister(h.loaded)
	}
	return h
}

// Provider returns the loaded engine
func (h *Handle) Provider() (provider.TranscriptionProvider, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.provider, h.provider != nil
}

// Ready reports whether an engine is loaded
func (h *Handle) Ready() bool {
	_, ok := h.Provider()
	return ok
}

// Set installs an already constructed engine
func (h *Handle) Set(p provider.TranscriptionProvider) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrClosed
	}
	if h.provider != nil {
		return ErrAlreadyLoaded
	}
	h.provider = p
	h.loaded.Set(1)
	return nil
}

// Load constructs the configured engine and installs it. Construction may
// download model weights, so it can take minutes on first start.
func (h *Handle) Load(ctx context.Context, config provider.ProviderConfig, logger *zap.Logger) error {
	if h.Ready() {
		return ErrAlreadyLoaded
	}

	logger.Info("Loading transcription engine",
		zap.String("backend", config.Backend),
		zap.String("model", config.Model),
		zap.String("device", config.Device),
		zap.String("compute_type", config.ComputeType),
	)

	start := time.Now()
	p, err := provider.CreateProvider(ctx, config, logger)
	if err != nil {
		return err
	}

	if err := h.Set(p); err != nil {
		p.Close()
		return err
	}

	info := p.GetProviderInfo()
	logger.Info("Transcription engine loaded",
		zap.String("provider", info.DisplayName),
		zap.String("model", info.Model),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Close releases the engine, if any. The handle reports not ready afterwards
// and refuses engines installed later.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	if h.provider == nil {
		return nil
	}
	err := h.provider.Close()
	h.provider = nil
	h.loaded.Set(0)
	return err
}
