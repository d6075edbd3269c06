package ytdlp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oshokin/tube-grabber/internal/media"
)

// TestExtractorArgs tests identity and token rendering.
func TestExtractorArgs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "youtube:player_client=android", extractorArgs(media.IdentityAndroid, ""))
	assert.Equal(t, "youtube:player_client=web;po_token=web.gvs+TOKEN", extractorArgs(media.IdentityWeb, "TOKEN"))
}

// TestDownloadArgs tests the download command line.
func TestDownloadArgs(t *testing.T) {
	t.Parallel()

	args := downloadArgs(&DownloadRequest{
		URL:                "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Identity:           media.IdentityTV,
		FormatExpression:   "137+140",
		OutputTemplate:     "/scratch/tok.%(ext)s",
		MergeOutputFormat:  "mp4",
		TranscoderLocation: "/usr/bin/ffmpeg",
	})

	assert.Equal(t, []string{
		"--no-playlist", "--no-colors", "--ignore-config",
		"--newline", "--progress", "--no-mtime",
		"--format", "137+140",
		"--extractor-args", "youtube:player_client=tv",
		"--output", "/scratch/tok.%(ext)s",
		"--merge-output-format", "mp4",
		"--ffmpeg-location", "/usr/bin/ffmpeg",
		"--", "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	}, args)
}

// TestCatalogAndListingArgs tests metadata command lines.
func TestCatalogAndListingArgs(t *testing.T) {
	t.Parallel()

	catalog := catalogArgs(&CatalogRequest{URL: "u", Identity: media.IdentityIOS})
	assert.Contains(t, catalog, "--dump-single-json")
	assert.Contains(t, catalog, "--no-playlist")
	assert.Equal(t, "u", catalog[len(catalog)-1])

	listing := listingArgs(&ListingRequest{URL: "u", Identity: media.IdentityIOS})
	assert.Contains(t, listing, "--list-formats")
	assert.Equal(t, "u", listing[len(listing)-1])
}

// TestRedactArgs tests that tokens never reach logs.
func TestRedactArgs(t *testing.T) {
	t.Parallel()

	redacted := redactArgs([]string{"--extractor-args", "youtube:player_client=web;po_token=web.gvs+SECRET"})
	assert.Equal(t, []string{"--extractor-args", "youtube:player_client=web;po_token=[redacted]"}, redacted)
}
