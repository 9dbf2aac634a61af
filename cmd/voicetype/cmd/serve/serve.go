package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"voice-type/internal/app"
	"voice-type/internal/app/api/provider"
	"voice-type/internal/app/common"
	"voice-type/internal/config"
)

var port int

func init() {
	Cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port, overrides PORT")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the transcription HTTP API",
	Long: `Run the transcription HTTP API

- Settings come from the environment, a .env file is loaded when present
- API_TOKEN is required, every transcription request must carry it
- The engine loads in the background; /v1/health reports when it is ready
- Startup fails if the engine cannot be loaded`,
	RunE: func(cmd *cobra.Command, args []string) error {
		envFile, err := config.LoadEnv()
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		level := cfg.LogLevel
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = "debug"
		}

		logger, err := common.NewLogger(cfg.IsDevelopment(), level)
		if err != nil {
			return err
		}
		defer logger.Sync()

		logger.Info("Configuration loaded",
			zap.String("env_file", envFile),
			zap.String("backend", cfg.Engine.Backend),
			zap.String("model", cfg.Engine.Model),
			zap.Strings("registered_backends", provider.ListRegisteredProviders()),
			zap.Int("workers", cfg.Transcription.Workers),
		)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		application := app.InitializeApplication(cfg, logger)
		if err := application.Run(ctx); err != nil {
			logger.Error("Server stopped with error", zap.Error(err))
			return fmt.Errorf("serve: %w", err)
		}

		logger.Info("Server stopped")
		return nil
	},
}

// loadConfig reads the environment and applies the flag overrides, which are
// validated like their environment counterparts.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if port != 0 {
		cfg.Server.Port = port
		if err := config.Validate(cfg); err != nil {
			return nil, fmt.Errorf("invalid --port: %w", err)
		}
	}
	return cfg, nil
}
