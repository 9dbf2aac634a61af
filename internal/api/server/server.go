package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	_ "voice-type/docs" // Generated swagger docs
	apierrors "voice-type/internal/api/errors"
	"voice-type/internal/api/middleware"
	v1routes "voice-type/internal/api/v1/routes"
	"voice-type/internal/api/v1/services"
	"voice-type/internal/config"
)

// Timeouts for the HTTP listener. Writes are unbounded by the server since a
// transcription may legitimately run for minutes; TRANSCRIBE_TIMEOUT bounds it.
const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 120 * time.Second
)

// Server represents the API server
type Server struct {
	config     *config.Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
	errs       chan error
}

// NewServer creates a new API server. gatherer is exposed on /metrics when
// metrics are enabled; httpMetrics may be nil.
func NewServer(
	cfg *config.Config,
	transcriptionService services.TranscriptionService,
	httpMetrics *middleware.HTTPMetrics,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) *Server {
	// Set Gin mode based on environment
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogging(logger, v1routes.HealthPath))
	// Metrics wrap the recovery handler so recovered panics are counted as 500s
	if httpMetrics != nil {
		router.Use(httpMetrics.Middleware())
	}
	router.Use(middleware.ErrorHandler(logger))
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowOrigins
	router.Use(middleware.CORS(corsConfig))

	v1 := router.Group("/v1")
	v1routes.RegisterRoutes(v1, &v1routes.ServiceContainer{
		TranscriptionService: transcriptionService,
		APIToken:             cfg.Auth.APIToken,
		MaxUploadSize:        cfg.Server.MaxUploadSize,
	})

	if cfg.MetricsEnabled && gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// Swagger documentation routes
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.NoRoute(func(c *gin.Context) {
		middleware.HandleError(c, apierrors.NewNotFoundError("Not Found"))
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	return &Server{
		config:     cfg,
		router:     router,
		httpServer: httpServer,
		logger:     logger,
		errs:       make(chan error, 1),
	}
}

// Start binds the listen address and serves in the background. Bind errors
// are returned directly; later failures arrive on Errors.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Serve serves on an existing listener in the background
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("Starting API server",
		zap.String("address", listener.Addr().String()),
		zap.String("environment", s.config.Environment),
	)

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server stopped", zap.Error(err))
			s.errs <- err
		}
	}()

	return nil
}

// Errors delivers a fatal serve error, if one happens
func (s *Server) Errors() <-chan error {
	return s.errs
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	s.logger.Info("API server shutdown complete")
	return nil
}

// Router returns the Gin router (useful for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
