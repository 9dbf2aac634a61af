package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"voice-type/internal/config"
)

// provideMetricsRegistry creates a registry carrying the Go runtime and
// process collectors next to the service's own metrics
func provideMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideTranscriptionConfig(cfg *config.Config) config.TranscriptionConfig {
	return cfg.Transcription
}
