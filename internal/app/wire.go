//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"voice-type/internal/api/middleware"
	"voice-type/internal/api/server"
	"voice-type/internal/api/v1/services"
	"voice-type/internal/app/api/provider"
	"voice-type/internal/app/loader"
	"voice-type/internal/config"
)

var metricsSet = wire.NewSet(
	provideMetricsRegistry,
	wire.Bind(new(prometheus.Registerer), new(*prometheus.Registry)),
	wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
	provider.NewProviderMetrics,
	wire.Bind(new(provider.ProviderMetrics), new(*provider.PrometheusMetrics)),
	middleware.NewHTTPMetrics,
)

var transcriptionSet = wire.NewSet(
	loader.NewHandle,
	wire.Bind(new(services.EngineSource), new(*loader.Handle)),
	provideTranscriptionConfig,
	services.NewTranscriptionService,
	wire.Bind(new(services.TranscriptionService), new(*services.TranscriptionServiceImpl)),
)

// InitializeApplication builds the server and its dependencies. The engine is
// not loaded here; Application.Run loads it after the listener is up.
func InitializeApplication(cfg *config.Config, logger *zap.Logger) *Application {
	wire.Build(metricsSet, transcriptionSet, server.NewServer, NewApplication)
	return &Application{}
}
