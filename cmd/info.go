package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/tube-grabber/internal/app"
	"github.com/oshokin/tube-grabber/internal/logger"
)

//nolint:gochecknoglobals // Cobra command requires a global definition.
var infoCmd = &cobra.Command{
	Use:              "info <url>",
	Short:            "Show video details and available formats",
	Args:             cobra.ExactArgs(1),
	PersistentPreRun: initConfig,
	Run: func(cmd *cobra.Command, args []string) {
		if err := app.ExecuteInfoCommand(cmd.Context(), appConfig, args[0], cmd.OutOrStdout()); err != nil {
			logger.Fatalf(cmd.Context(), "Failed to get video info: %v", err)
		}
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	infoCmd.Flags().String("po-token", "", "static proof-of-origin token passed to yt-dlp.")

	rootCmd.AddCommand(infoCmd)
}
