package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	yt "github.com/kkdai/youtube/v2"

	"github.com/oshokin/tube-grabber/internal/constants"
	"github.com/oshokin/tube-grabber/internal/logger"
	"github.com/oshokin/tube-grabber/internal/media"
)

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

// Client fetches assets and streams through the library, without an external process.
type Client interface {
	// GetAsset fetches the asset details and its stream catalog in one call.
	GetAsset(ctx context.Context, url string) (*Asset, error)
	// DownloadStream writes one stream of asset into path and returns the byte count.
	DownloadStream(ctx context.Context, asset *Asset, formatID, path string) (int64, error)
}

// Asset is one fetched video.
type Asset struct {
	// Catalog holds the asset details and the converted streams.
	Catalog media.Catalog
	// video is the library view, needed to open streams.
	video *yt.Video
}

// Options configures ClientImpl.
type Options struct {
	// HTTPClient carries every library request.
	HTTPClient *http.Client
}

// ClientImpl implements Client with kkdai/youtube.
type ClientImpl struct {
	// lib is the library client.
	lib *yt.Client
}

// NewClient creates a new library client.
func NewClient(opts Options) Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &ClientImpl{
		lib: &yt.Client{HTTPClient: httpClient},
	}
}

// GetAsset fetches the asset details and its stream catalog.
func (c *ClientImpl) GetAsset(ctx context.Context, url string) (*Asset, error) {
	video, err := c.lib.GetVideoContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video: %w", MapError(err))
	}

	catalog := catalogFromVideo(video)
	if len(catalog.Streams) == 0 {
		return nil, ErrEmptyCatalog
	}

	logger.DebugKV(ctx, "Library catalog fetched",
		"id", video.ID,
		"formats", len(video.Formats),
		"usable", len(catalog.Streams))

	return &Asset{Catalog: catalog, video: video}, nil
}

// DownloadStream writes one stream of asset into path.
// A 403 during the chunked transfer is retried once as a single request.
func (c *ClientImpl) DownloadStream(ctx context.Context, asset *Asset, formatID, path string) (int64, error) {
	if asset == nil || asset.video == nil {
		return 0, ErrNoAsset
	}

	format, err := findFormat(asset.video, formatID)
	if err != nil {
		return 0, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.DefaultFilePermissions)
	if err != nil {
		return 0, fmt.Errorf("failed to create stream file: %w", err)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			logger.Warnf(ctx, "Failed to close %s: %v", path, closeErr)
		}
	}()

	written, err := c.copyStream(ctx, asset.video, format, file)
	if err == nil || !IsStatus(err, http.StatusForbidden) {
		return written, err
	}

	logger.Warnf(ctx, "Chunked transfer of format %s was refused, retrying as a single request", formatID)

	if _, err = file.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to rewind stream file: %w", err)
	}

	if err = file.Truncate(0); err != nil {
		return 0, fmt.Errorf("failed to truncate stream file: %w", err)
	}

	single := *format
	single.ContentLength = 0

	return c.copyStream(ctx, asset.video, &single, file)
}

func (c *ClientImpl) copyStream(ctx context.Context, video *yt.Video, format *yt.Format, dst io.Writer) (int64, error) {
	stream, size, err := c.lib.GetStreamContext(ctx, video, format)
	if err != nil {
		return 0, fmt.Errorf("failed to open stream: %w", MapError(err))
	}

	defer stream.Close() //nolint:errcheck // Read side, nothing to flush.

	written, err := copyWithContext(ctx, dst, stream)
	if err != nil {
		return written, fmt.Errorf("failed to copy stream: %w", MapError(err))
	}

	if size > 0 && written != size {
		return written, fmt.Errorf("%w: got %d of %d bytes", io.ErrUnexpectedEOF, written, size)
	}

	return written, nil
}

func findFormat(video *yt.Video, formatID string) (*yt.Format, error) {
	itag, err := strconv.Atoi(formatID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrFormatNotFound, formatID)
	}

	for i := range video.Formats {
		if video.Formats[i].ItagNo == itag {
			return &video.Formats[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrFormatNotFound, formatID)
}

// copyBufferSize is the chunk size of copyWithContext.
const copyBufferSize = 256 * 1024

// copyWithContext copies src into dst, checking ctx between chunks.
// Every read and write error is returned, including io.ErrUnexpectedEOF.
func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	var (
		buf     = make([]byte, copyBufferSize)
		written int64
	)

	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			w, writeErr := dst.Write(buf[:n])
			written += int64(w)

			if writeErr != nil {
				return written, writeErr
			}

			if w != n {
				return written, io.ErrShortWrite
			}
		}

		if errors.Is(readErr, io.EOF) {
			return written, nil
		}

		if readErr != nil {
			return written, readErr
		}
	}
}
