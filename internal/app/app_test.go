package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/tube-grabber/internal/config"
	"github.com/oshokin/tube-grabber/internal/media"
	"github.com/oshokin/tube-grabber/internal/service/grabber"
)

// TestSavePackage tests that the output directory is created and the file written.
func TestSavePackage(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "out")

	path, err := savePackage(dir, &grabber.Package{Data: []byte("mp3 bytes"), Filename: "Song.mp3"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Song.mp3"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3 bytes"), content)
}

// TestPrintInfo tests the human-readable info listing.
func TestPrintInfo(t *testing.T) {
	t.Parallel()

	height := 1080
	bitrate := 128.0

	var buf bytes.Buffer

	err := printInfo(&buf, &grabber.InfoResult{
		Info: media.AssetInfo{
			Title:         "Never Gonna Give You Up",
			Author:        "Rick Astley",
			LengthSeconds: 213,
			ViewCount:     1234567,
		},
		AudioFormats: []media.StreamDescriptor{
			{FormatID: "140", Container: "m4a", HasAudio: true, AudioBitrateKbps: &bitrate, AudioCodec: "mp4a.40.2"},
		},
		VideoFormats: []media.StreamDescriptor{
			{FormatID: "137", Container: "mp4", HasVideo: true, Height: &height, VideoCodec: "avc1.640028"},
		},
		Warnings: []string{"a 2160p stream exists"},
		Source:   grabber.SourceLibrary,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Never Gonna Give You Up")
	assert.Contains(t, out, "3m33s")
	assert.Contains(t, out, "1,234,567")
	assert.Contains(t, out, "library")
	assert.Regexp(t, `140\s+m4a\s+128kbps\s+mp4a\.40\.2`, out)
	assert.Regexp(t, `137\s+mp4\s+1080p\s+avc1\.640028`, out)
	assert.Contains(t, out, "Warning: a 2160p stream exists")
}

// TestConfigCommands tests init followed by set.
func TestConfigCommands(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), config.DefaultConfigFilename)

	require.NoError(t, ExecuteConfigInitCommand(t.Context(), path, false))
	require.ErrorIs(t, ExecuteConfigInitCommand(t.Context(), path, false), config.ErrConfigExists)

	require.NoError(t, ExecuteConfigSetCommand(t.Context(), path, "min_height", "480"))
	require.ErrorIs(t, ExecuteConfigSetCommand(t.Context(), path, "min_height", "4320"), config.ErrInvalidHeights)
	require.ErrorIs(t, ExecuteConfigSetCommand(t.Context(), path, "auth_token", "x"), config.ErrUnknownKey)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4320, cfg.MinHeight)
}
