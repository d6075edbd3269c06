package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/tube-grabber/internal/app"
	"github.com/oshokin/tube-grabber/internal/logger"
	"github.com/oshokin/tube-grabber/internal/media"
	"github.com/oshokin/tube-grabber/internal/service/grabber"
)

//nolint:gochecknoglobals // Cobra command requires a global definition.
var getCmd = &cobra.Command{
	Use:   "get [flags] <url>",
	Short: "Download one URL to a local file",
	Long: `Downloads one video as mp3 audio or mp4 video into the output directory.

Quality is either a format id shown by 'info' or a height such as 720p.`,
	Example: `  tube-grabber get https://youtu.be/dQw4w9WgXcQ
  tube-grabber get -f mp4 -q 720p -o ~/Videos https://www.youtube.com/watch?v=dQw4w9WgXcQ`,
	Args:             cobra.ExactArgs(1),
	PersistentPreRun: initConfig,
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("format")
		quality, _ := cmd.Flags().GetString("quality")

		req := &grabber.DownloadRequest{
			URL:     args[0],
			Format:  format,
			Quality: quality,
		}

		if err := app.ExecuteGetCommand(cmd.Context(), appConfig, req); err != nil {
			logger.Fatalf(cmd.Context(), "Download failed: %v", err)
		}
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	flags := getCmd.Flags()

	flags.StringP("format", "f", string(media.OutputMP3), "output format: mp3 or mp4.")
	flags.StringP("quality", "q", "", "format id or height such as 720p (default is the best available).")
	flags.StringP(
		"output",
		"o",
		"",
		"directory to save downloaded files (the path will be created if it doesn’t exist).")
	flags.String("scratch-dir", "", "directory for temporary download files.")
	flags.String("po-token", "", "static proof-of-origin token passed to yt-dlp.")

	rootCmd.AddCommand(getCmd)
}
