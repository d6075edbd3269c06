package ytdlp

import (
	"strings"

	"github.com/oshokin/tube-grabber/internal/media"
)

// Generic selector expressions used when the choice is delegated to the extractor.
const (
	GenericAudioSelector = "bestaudio/best"
	GenericVideoSelector = "bestvideo*+bestaudio/best"
)

// extractorArgs renders the youtube extractor arguments for an identity and optional token.
func extractorArgs(identity media.ClientIdentity, poToken string) string {
	var b strings.Builder

	b.WriteString("youtube:player_client=")
	b.WriteString(identity.String())

	if poToken != "" {
		b.WriteString(";po_token=")
		b.WriteString(identity.String())
		b.WriteString(".gvs+")
		b.WriteString(poToken)
	}

	return b.String()
}

func commonArgs() []string {
	return []string{"--no-playlist", "--no-colors", "--ignore-config"}
}

func catalogArgs(req *CatalogRequest) []string {
	args := commonArgs()
	args = append(args,
		"--dump-single-json",
		"--no-warnings",
		"--skip-download",
		"--extractor-args", extractorArgs(req.Identity, req.POToken),
		"--", req.URL)

	return args
}

func listingArgs(req *ListingRequest) []string {
	args := commonArgs()
	args = append(args,
		"--list-formats",
		"--extractor-args", extractorArgs(req.Identity, req.POToken),
		"--", req.URL)

	return args
}

func downloadArgs(req *DownloadRequest) []string {
	args := commonArgs()
	args = append(args,
		"--newline",
		"--progress",
		"--no-mtime",
		"--format", req.FormatExpression,
		"--extractor-args", extractorArgs(req.Identity, req.POToken),
		"--output", req.OutputTemplate)

	if req.MergeOutputFormat != "" {
		args = append(args, "--merge-output-format", req.MergeOutputFormat)
	}

	if req.TranscoderLocation != "" {
		args = append(args, "--ffmpeg-location", req.TranscoderLocation)
	}

	return append(args, "--", req.URL)
}
