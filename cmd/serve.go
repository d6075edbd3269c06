package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/tube-grabber/internal/app"
	"github.com/oshokin/tube-grabber/internal/logger"
)

//nolint:gochecknoglobals // Cobra command requires a global definition.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Starts the HTTP API used by the browser UI:

  POST /info       asset details and selectable formats
  POST /download   the finished file
  GET  /healthz    yt-dlp and ffmpeg availability
  GET  /metrics    Prometheus metrics

Stale scratch files left by earlier runs are removed at startup.`,
	Args:             cobra.NoArgs,
	PersistentPreRun: initConfig,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := app.ExecuteServeCommand(cmd.Context(), appConfig); err != nil {
			logger.Fatalf(cmd.Context(), "Server failed: %v", err)
		}
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	serveCmd.Flags().StringP("listen", "l", "", "address to listen on, e.g. :8080.")
	serveCmd.Flags().String("scratch-dir", "", "directory for temporary download files.")
	serveCmd.Flags().String("po-token", "", "static proof-of-origin token passed to yt-dlp.")

	rootCmd.AddCommand(serveCmd)
}
