package ffmpeg

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestArgs tests the command lines of every operation.
func TestArgs(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]string{"-hide_banner", "-nostdin", "-loglevel", "error", "-y",
			"-i", "in.webm", "-vn", "-acodec", "libmp3lame", "-b:a", "192k", "out.mp3"},
		mp3Args("in.webm", "out.mp3", "192k"))

	assert.Equal(t,
		[]string{"-hide_banner", "-nostdin", "-loglevel", "error", "-y",
			"-i", "in.webm", "-map", "0", "-c", "copy", "-movflags", "+faststart", "out.mp4"},
		remuxArgs("in.webm", "out.mp4"))

	assert.Equal(t,
		[]string{"-hide_banner", "-nostdin", "-loglevel", "error", "-y",
			"-i", "v.mp4", "-i", "a.m4a", "-map", "0:v:0", "-map", "1:a:0",
			"-c", "copy", "-shortest", "-movflags", "+faststart", "out.mp4"},
		muxArgs("v.mp4", "a.m4a", "out.mp4"))
}

// TestLocation_Missing tests that a missing binary is reported.
func TestLocation_Missing(t *testing.T) {
	t.Parallel()

	client := NewClient(Options{Path: filepath.Join(t.TempDir(), "no-ffmpeg"), Timeout: time.Second})

	_, err := client.Location()
	require.ErrorIs(t, err, ErrTranscoderNotFound)

	err = client.ToMP3(t.Context(), "in", "out")
	require.ErrorIs(t, err, ErrTranscoderNotFound)

	_, err = NewClient(Options{}).Location()
	require.ErrorIs(t, err, ErrTranscoderNotFound)
}

// TestRun_FailureCarriesStderr tests that failures include diagnostics.
func TestRun_FailureCarriesStderr(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}

	path := filepath.Join(t.TempDir(), "fake-ffmpeg")
	script := "#!/bin/sh\necho 'Invalid data found when processing input' >&2\nexit 1\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755)) //nolint:gosec // Test executable.

	client := NewClient(Options{Path: path, AudioBitrate: "192k", Timeout: 5 * time.Second})

	err := client.Mux(t.Context(), "v", "a", "out.mp4")
	require.ErrorIs(t, err, ErrTranscodeFailed)
	assert.Contains(t, err.Error(), "Invalid data found")
}

// TestLimitedBuffer tests that diagnostics are capped.
func TestLimitedBuffer(t *testing.T) {
	t.Parallel()

	var b limitedBuffer

	n, err := b.Write(make([]byte, maxStderrBytes+100))
	require.NoError(t, err)
	assert.Equal(t, maxStderrBytes+100, n)
	assert.Len(t, b.String(), maxStderrBytes)
}
