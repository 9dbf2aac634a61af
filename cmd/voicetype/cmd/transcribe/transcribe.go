package transcribe

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"voice-type/internal/client"
)

var (
	apiURL     string
	apiToken   string
	language   string
	configPath string
	timeout    time.Duration
	quiet      bool
)

func init() {
	Cmd.Flags().StringVarP(&apiURL, "url", "u", "", "server base URL, overrides api_url")
	Cmd.Flags().StringVarP(&apiToken, "token", "t", "", "API token, overrides api_token")
	Cmd.Flags().StringVarP(&language, "language", "l", "", "language code or auto, overrides language")
	Cmd.Flags().StringVarP(&configPath, "config", "c", "", "client config file (default $XDG_CONFIG_HOME/voice-type/config.yaml)")
	Cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "request timeout")
	Cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the upload progress bar")
}

// Cmd represents the transcribe command
var Cmd = &cobra.Command{
	Use:   "transcribe <audio-file>",
	Short: "Send an audio file to a running server and print the text",
	Long: `Send an audio file to a running server and print the text

- Connection settings are read from the client config file, flags override them
- The config file is created with defaults on first use
- The transcript is written to stdout, progress to stderr`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			if path, err = client.ConfigPath(); err != nil {
				return err
			}
		}

		cfg, err := client.LoadConfig(path)
		if err != nil {
			return err
		}
		applyFlags(cmd, &cfg)

		if cfg.APIToken == "" {
			return fmt.Errorf("no API token: set api_token in %s or pass --token", path)
		}

		var progress *mpb.Progress
		var bar *client.ByteBar
		var wrap func(r io.Reader, total int64) io.Reader
		if !quiet {
			progress = mpb.New(mpb.WithOutput(cmd.ErrOrStderr()), mpb.WithRefreshRate(120*time.Millisecond))
			bar = client.NewByteBar(progress, "upload")
			wrap = bar.Wrap
		}

		start := time.Now()
		c := client.New(cfg.APIURL, cfg.APIToken, timeout)
		text, err := c.Transcribe(cmd.Context(), args[0], cfg.Language, wrap)

		if progress != nil {
			bar.Finish(err)
			progress.Wait()
		}
		if err != nil {
			return err
		}

		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "transcribed %s in %s\n", args[0], time.Since(start).Round(time.Millisecond))
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func applyFlags(cmd *cobra.Command, cfg *client.Config) {
	if cmd.Flags().Changed("url") {
		cfg.APIURL = apiURL
	}
	if cmd.Flags().Changed("token") {
		cfg.APIToken = apiToken
	}
	if cmd.Flags().Changed("language") {
		cfg.Language = language
	}
}
