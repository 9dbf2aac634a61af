package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"voice-type/cmd/voicetype/cmd/models"
	"voice-type/cmd/voicetype/cmd/serve"
	"voice-type/cmd/voicetype/cmd/transcribe"
	"voice-type/cmd/voicetype/cmd/version"
)

var Verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "voicetype",
	Short: "Speech to text service backed by whisper",
	Long: `Speech to text service backed by whisper.
- serve runs the HTTP API that accepts audio uploads
- transcribe sends a local file to a running server
- models pre-fetches whisper.cpp model files`,
	TraverseChildren: true,
	SilenceUsage:     true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(models.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
}
