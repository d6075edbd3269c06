package ytdlp

import (
	"context"
	"time"

	"github.com/oshokin/tube-grabber/internal/media"
)

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

// Client runs extractor operations against a located binary.
type Client interface {
	// FetchCatalog runs JSON dump mode and returns the parsed catalog.
	FetchCatalog(ctx context.Context, req *CatalogRequest) (*media.Catalog, error)
	// ListFormats runs the human-readable listing mode.
	ListFormats(ctx context.Context, req *ListingRequest) ([]ListingRow, error)
	// Download fetches the selected format into the output template.
	Download(ctx context.Context, req *DownloadRequest) (*DownloadResult, error)
}

// CatalogRequest asks for the catalog of one asset under one identity.
type CatalogRequest struct {
	// ToolPath is the extractor executable.
	ToolPath string
	// URL is the normalized asset URL.
	URL string
	// Identity is the emulated client.
	Identity media.ClientIdentity
	// POToken is an optional proof-of-origin token.
	POToken string
}

// ListingRequest asks for the human-readable format listing.
type ListingRequest struct {
	// ToolPath is the extractor executable.
	ToolPath string
	// URL is the normalized asset URL.
	URL string
	// Identity is the emulated client.
	Identity media.ClientIdentity
	// POToken is an optional proof-of-origin token.
	POToken string
}

// ListingRow is one row of the format listing.
type ListingRow struct {
	// FormatID is the listed id.
	FormatID string
	// Container is the listed extension.
	Container string
	// Height is the vertical resolution, 0 for audio-only rows.
	Height int
	// AudioOnly reports "audio only" rows.
	AudioOnly bool
}

// Progress is one parsed progress update.
type Progress struct {
	// Percent is the completion percentage of the current file.
	Percent float64
	// Line is the raw output line.
	Line string
}

// DownloadRequest describes one download step.
type DownloadRequest struct {
	// ToolPath is the extractor executable.
	ToolPath string
	// URL is the normalized asset URL.
	URL string
	// Identity is the emulated client.
	Identity media.ClientIdentity
	// POToken is an optional proof-of-origin token.
	POToken string
	// FormatExpression is the value of --format, e.g. "137+140" or "bestaudio/best".
	FormatExpression string
	// OutputTemplate is the value of --output, e.g. "/scratch/<token>.%(ext)s".
	OutputTemplate string
	// MergeOutputFormat sets the container of merged video+audio output.
	MergeOutputFormat string
	// TranscoderLocation points the extractor at the transcoder binary.
	TranscoderLocation string
	// OnProgress receives progress updates; may be nil.
	OnProgress func(Progress)
}

// DownloadResult describes a finished download.
type DownloadResult struct {
	// Destinations are the file paths the extractor reported writing.
	Destinations []string
	// Duration is the wall time of the run.
	Duration time.Duration
}

// Options configures ClientImpl.
type Options struct {
	// MetadataTimeout bounds catalog and listing runs.
	MetadataTimeout time.Duration
	// DownloadTimeout bounds download runs.
	DownloadTimeout time.Duration
}

// ClientImpl implements Client by spawning the extractor.
type ClientImpl struct {
	// metadataTimeout bounds catalog and listing runs.
	metadataTimeout time.Duration
	// downloadTimeout bounds download runs.
	downloadTimeout time.Duration
}

// NewClient creates a new extractor client.
func NewClient(opts Options) Client {
	return &ClientImpl{
		metadataTimeout: opts.MetadataTimeout,
		downloadTimeout: opts.DownloadTimeout,
	}
}
