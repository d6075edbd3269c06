package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/tube-grabber/internal/logger"
)

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

// Client runs transcoder operations.
type Client interface {
	// Location returns the resolved binary path or ErrTranscoderNotFound.
	Location() (string, error)
	// ToMP3 re-encodes the audio track of input into an mp3 file.
	ToMP3(ctx context.Context, input, output string) error
	// Remux copies every stream of input into the container implied by output.
	Remux(ctx context.Context, input, output string) error
	// Mux combines a video-only and an audio-only file, cutting to the shorter one.
	Mux(ctx context.Context, video, audio, output string) error
}

// Static error definitions for better error handling.
var (
	// ErrTranscoderNotFound indicates that the ffmpeg binary is missing.
	ErrTranscoderNotFound = errors.New("transcoder not found")
	// ErrTranscodeFailed indicates a non-zero exit or a timeout.
	ErrTranscodeFailed = errors.New("transcode failed")
)

const (
	// maxStderrBytes caps the diagnostics kept from a failed run.
	maxStderrBytes = 8 * 1024
	// waitDelay is how long a killed process may keep its pipes open.
	waitDelay = 5 * time.Second
)

// Options configures ClientImpl.
type Options struct {
	// Path is the binary name or path.
	Path string
	// AudioBitrate is the mp3 bitrate, e.g. "192k".
	AudioBitrate string
	// Timeout bounds one run.
	Timeout time.Duration
}

// ClientImpl implements Client by spawning ffmpeg.
type ClientImpl struct {
	// path is the configured binary name or path.
	path string
	// audioBitrate is passed to -b:a.
	audioBitrate string
	// timeout bounds one run.
	timeout time.Duration
	// resolveOnce guards resolvedPath.
	resolveOnce sync.Once
	// resolvedPath is the LookPath result.
	resolvedPath string
	// resolveErr is the LookPath error.
	resolveErr error
}

// NewClient creates a new transcoder client.
func NewClient(opts Options) Client {
	return &ClientImpl{
		path:         opts.Path,
		audioBitrate: opts.AudioBitrate,
		timeout:      opts.Timeout,
	}
}

// Location returns the resolved binary path.
func (c *ClientImpl) Location() (string, error) {
	c.resolveOnce.Do(func() {
		if c.path == "" {
			c.resolveErr = ErrTranscoderNotFound

			return
		}

		path, err := exec.LookPath(c.path)
		if err != nil {
			c.resolveErr = fmt.Errorf("%w: %w", ErrTranscoderNotFound, err)

			return
		}

		c.resolvedPath = path
	})

	return c.resolvedPath, c.resolveErr
}

// ToMP3 re-encodes the audio track of input into an mp3 file.
func (c *ClientImpl) ToMP3(ctx context.Context, input, output string) error {
	return c.run(ctx, mp3Args(input, output, c.audioBitrate))
}

// Remux copies every stream of input into the container implied by output.
func (c *ClientImpl) Remux(ctx context.Context, input, output string) error {
	return c.run(ctx, remuxArgs(input, output))
}

// Mux combines a video-only and an audio-only file.
func (c *ClientImpl) Mux(ctx context.Context, video, audio, output string) error {
	return c.run(ctx, muxArgs(video, audio, output))
}

func baseArgs() []string {
	return []string{"-hide_banner", "-nostdin", "-loglevel", "error", "-y"}
}

func mp3Args(input, output, bitrate string) []string {
	return append(baseArgs(), "-i", input, "-vn", "-acodec", "libmp3lame", "-b:a", bitrate, output)
}

func remuxArgs(input, output string) []string {
	return append(baseArgs(), "-i", input, "-map", "0", "-c", "copy", "-movflags", "+faststart", output)
}

func muxArgs(video, audio, output string) []string {
	return append(baseArgs(),
		"-i", video,
		"-i", audio,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c", "copy",
		"-shortest",
		"-movflags", "+faststart",
		output)
}

func (c *ClientImpl) run(ctx context.Context, args []string) error {
	path, err := c.Location()
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var stderr limitedBuffer

	cmd := exec.CommandContext(runCtx, path, args...) //nolint:gosec // The path comes from configuration.
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	startedAt := time.Now()

	if err = cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		return fmt.Errorf("%w: %w: %s", ErrTranscodeFailed, err, strings.TrimSpace(stderr.String()))
	}

	logger.DebugKV(ctx, "Transcoder finished", "args", args, "duration", time.Since(startedAt))

	return nil
}

// limitedBuffer keeps the first maxStderrBytes written to it.
type limitedBuffer struct {
	buf bytes.Buffer
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if remaining := maxStderrBytes - b.buf.Len(); remaining > 0 {
		b.buf.Write(p[:min(len(p), remaining)])
	}

	return len(p), nil
}

func (b *limitedBuffer) String() string {
	return b.buf.String()
}
