package models

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"voice-type/internal/app/api/whisper_cpp"
	"voice-type/internal/client"
	"voice-type/internal/config"
)

var (
	modelDir    string
	computeType string
)

func init() {
	Cmd.PersistentFlags().StringVarP(&modelDir, "dir", "d", "", "model directory, overrides WHISPER_MODEL_DIR")
	Cmd.PersistentFlags().StringVar(&computeType, "compute-type", "", "int8, float16 or float32, overrides WHISPER_COMPUTE_TYPE")

	Cmd.AddCommand(downloadCmd)
	Cmd.AddCommand(listCmd)
}

// Cmd groups the whisper.cpp model management commands
var Cmd = &cobra.Command{
	Use:   "models",
	Short: "Manage whisper.cpp model files",
}

var downloadCmd = &cobra.Command{
	Use:   "download [preset]",
	Short: "Download the ggml model for a preset (default WHISPER_MODEL)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		preset, dir, compute := resolve()
		if len(args) == 1 {
			preset = args[0]
		}

		fileName, err := whisper_cpp.ModelFileName(preset, compute)
		if err != nil {
			return err
		}

		progress := mpb.New(mpb.WithOutput(cmd.ErrOrStderr()), mpb.WithRefreshRate(120*time.Millisecond))
		bar := client.NewByteBar(progress, fileName)

		path, err := whisper_cpp.DownloadModel(cmd.Context(), fileName, dir, bar.Wrap)
		bar.Finish(err)
		progress.Wait()
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List model presets and which files are present locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, dir, compute := resolve()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PRESET\tFILE\tLOCAL")
		for _, preset := range whisper_cpp.Presets {
			fileName, err := whisper_cpp.ModelFileName(preset, compute)
			if err != nil {
				return err
			}

			local := "-"
			if info, err := os.Stat(filepath.Join(dir, fileName)); err == nil {
				local = humanize.IBytes(uint64(info.Size()))
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", preset, fileName, local)
		}
		return w.Flush()
	},
}

// resolve merges the environment defaults with the command flags
func resolve() (preset, dir, compute string) {
	config.LoadEnv()

	preset = envOr("WHISPER_MODEL", config.DefaultWhisperModel)
	dir = envOr("WHISPER_MODEL_DIR", config.DefaultModelDir)
	compute = envOr("WHISPER_COMPUTE_TYPE", config.DefaultComputeType)

	if modelDir != "" {
		dir = modelDir
	}
	if computeType != "" {
		compute = computeType
	}
	return preset, dir, compute
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
