package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"voice-type/internal/api/server"
	"voice-type/internal/app/loader"
	"voice-type/internal/config"
)

// ShutdownTimeout bounds how long in-flight requests get to finish
const ShutdownTimeout = 30 * time.Second

// Application is the assembled server process
type Application struct {
	Config *config.Config
	Server *server.Server
	Handle *loader.Handle
	Logger *zap.Logger
}

func NewApplication(cfg *config.Config, srv *server.Server, handle *loader.Handle, logger *zap.Logger) *Application {
	return &Application{
		Config: cfg,
		Server: srv,
		Handle: handle,
		Logger: logger,
	}
}

// Run starts the listener, loads the engine and serves until ctx is done or
// the server fails. A failed engine load stops the server and is returned,
// so the process exits non-zero instead of serving without a model.
func (a *Application) Run(ctx context.Context) error {
	if err := a.Server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	loaded := make(chan error, 1)
	go func() {
		loaded <- a.Handle.Load(ctx, a.Config.Engine, a.Logger)
	}()

	var runErr error
	for running := true; running; {
		select {
		case err := <-loaded:
			if err != nil {
				runErr = fmt.Errorf("loading transcription engine: %w", err)
				running = false
			}
			loaded = nil
		case err := <-a.Server.Errors():
			runErr = err
			running = false
		case <-ctx.Done():
			a.Logger.Info("Shutdown requested")
			running = false
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}

	// The load goroutine may still be constructing the engine
	if loaded != nil {
		a.Logger.Info("Waiting for engine load to finish")
		select {
		case <-loaded:
		case <-shutdownCtx.Done():
			a.Logger.Warn("Engine load did not finish before shutdown timeout")
		}
	}

	if err := a.Handle.Close(); err != nil {
		a.Logger.Warn("Failed to close transcription engine", zap.Error(err))
	}
	return runErr
}
