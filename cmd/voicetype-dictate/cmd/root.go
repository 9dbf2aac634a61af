package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"voice-type/internal/app/common"
	"voice-type/internal/client"
	"voice-type/internal/dictate"
	"voice-type/internal/dictate/hotkey"
	"voice-type/internal/dictate/inject"
	"voice-type/internal/dictate/recorder"
)

var (
	configPath string
	apiURL     string
	apiToken   string
	language   string
	combo      string
	mode       string
	method     string
	noMute     bool
	timeout    time.Duration
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "voicetype-dictate",
	Short: "Push-to-talk dictation against a voice-type server",
	Long: `Push-to-talk dictation against a voice-type server

- Hold the hotkey (default super+c) and speak, release to transcribe
- The transcript is typed into the focused window
- Speaker output is muted while recording unless --no-mute is set
- Settings come from the client config file, flags override them`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "client config file (default $XDG_CONFIG_HOME/voice-type/config.yaml)")
	f.StringVarP(&apiURL, "url", "u", "", "server base URL, overrides api_url")
	f.StringVarP(&apiToken, "token", "t", "", "API token, overrides api_token")
	f.StringVarP(&language, "language", "l", "", "language code or auto, overrides language")
	f.StringVarP(&combo, "hotkey", "k", "", "key combination such as super+c, overrides hotkey")
	f.StringVar(&mode, "mode", "", "hold or toggle, overrides hotkey_mode")
	f.StringVar(&method, "method", "", "type or paste, overrides inject_method")
	f.BoolVar(&noMute, "no-mute", false, "leave speaker output on while recording")
	f.DurationVar(&timeout, "timeout", 2*time.Minute, "request timeout per clip")
	f.BoolVarP(&verbose, "verbose", "V", false, "debug logging")
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.APIToken == "" {
		return fmt.Errorf("no API token: set api_token in %s or pass --token", path)
	}

	keys, err := dictate.ParseCombo(cfg.Hotkey)
	if err != nil {
		return err
	}
	listener, err := hotkey.New(keys, cfg.HotkeyMode)
	if err != nil {
		return err
	}
	injector, err := inject.New(cfg.InjectMethod)
	if err != nil {
		return err
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	logger, err := common.NewLogger(true, level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.New(cfg.APIURL, cfg.APIToken, timeout)
	checkServer(ctx, c, logger)

	rec, err := recorder.New(dictate.DefaultSampleRate)
	if err != nil {
		return err
	}
	defer rec.Close()

	session := &dictate.Session{
		Recorder:    rec,
		Injector:    injector,
		Transcriber: c,
		Logger:      logger,
		Language:    cfg.Language,
		Status:      cmd.OutOrStdout(),
	}
	if cfg.MuteOutput {
		session.Muter = dictate.NewSystemMuter()
	}

	go listener.Start()
	defer listener.Stop()

	logger.Info("Ready, hold the hotkey to dictate",
		zap.String("hotkey", cfg.Hotkey),
		zap.String("mode", cfg.HotkeyMode),
		zap.String("server", cfg.APIURL),
	)
	return session.Run(ctx, listener.Events())
}

func loadConfig(cmd *cobra.Command) (client.Config, string, error) {
	path := configPath
	if path == "" {
		var err error
		if path, err = client.ConfigPath(); err != nil {
			return client.Config{}, "", err
		}
	}

	cfg, err := client.LoadConfig(path)
	if err != nil {
		return client.Config{}, path, err
	}

	overrides := []struct {
		flag  string
		value string
		dst   *string
	}{
		{"url", apiURL, &cfg.APIURL},
		{"token", apiToken, &cfg.APIToken},
		{"language", language, &cfg.Language},
		{"hotkey", combo, &cfg.Hotkey},
		{"mode", mode, &cfg.HotkeyMode},
		{"method", method, &cfg.InjectMethod},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			*o.dst = o.value
		}
	}
	if noMute {
		cfg.MuteOutput = false
	}
	return cfg, path, nil
}

// checkServer only warns; the server may come up after the client
func checkServer(ctx context.Context, c *client.Client, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	health, err := c.Health(ctx)
	switch {
	case err != nil:
		logger.Warn("Server is not reachable", zap.Error(err))
	case !health.ModelLoaded:
		logger.Warn("Server is up but the model is still loading")
	}
}
