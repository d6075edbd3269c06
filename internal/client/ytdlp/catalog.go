package ytdlp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/oshokin/tube-grabber/internal/media"
)

// rawInfo is the subset of the JSON dump this package reads.
type rawInfo struct {
	Type      string      `json:"_type"`
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Uploader  string      `json:"uploader"`
	Channel   string      `json:"channel"`
	Thumbnail string      `json:"thumbnail"`
	Duration  *float64    `json:"duration"`
	ViewCount *int64      `json:"view_count"`
	Formats   []rawFormat `json:"formats"`
}

// rawFormat is one entry of the formats array. Every field is optional in practice.
type rawFormat struct {
	FormatID   string   `json:"format_id"`
	Ext        string   `json:"ext"`
	VCodec     *string  `json:"vcodec"`
	ACodec     *string  `json:"acodec"`
	Height     *float64 `json:"height"`
	ABR        *float64 `json:"abr"`
	TBR        *float64 `json:"tbr"`
	FormatNote string   `json:"format_note"`
}

// FetchCatalog runs JSON dump mode and returns the parsed catalog.
func (c *ClientImpl) FetchCatalog(ctx context.Context, req *CatalogRequest) (*media.Catalog, error) {
	result, err := run(ctx, invocation{
		path:          req.ToolPath,
		args:          catalogArgs(req),
		timeout:       c.metadataTimeout,
		captureStdout: true,
	})
	if err != nil {
		return nil, err
	}

	catalog, err := ParseCatalog(result.stdout)
	if err != nil {
		return nil, &ToolError{
			Kind:   FailureMalformedOutput,
			Output: strings.Join(result.lines, "\n"),
			Err:    err,
		}
	}

	return catalog, nil
}

// ParseCatalog converts a JSON dump into a strict catalog.
func ParseCatalog(data []byte) (*media.Catalog, error) {
	var info rawInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	if info.Type == "playlist" || info.Type == "multi_video" {
		return nil, ErrPlaylistURL
	}

	descriptors := make([]media.StreamDescriptor, 0, len(info.Formats))
	for _, f := range info.Formats {
		descriptors = append(descriptors, toDescriptor(f))
	}

	author := info.Uploader
	if author == "" {
		author = info.Channel
	}

	catalog := media.NewCatalog(media.AssetInfo{
		ID:            info.ID,
		Title:         info.Title,
		Author:        author,
		ThumbnailURL:  info.Thumbnail,
		LengthSeconds: durationSeconds(info.Duration),
		ViewCount:     valueOrZero(info.ViewCount),
	}, descriptors)

	if len(catalog.Streams) == 0 {
		return nil, ErrEmptyCatalog
	}

	return &catalog, nil
}

func toDescriptor(f rawFormat) media.StreamDescriptor {
	d := media.StreamDescriptor{
		FormatID:   strings.TrimSpace(f.FormatID),
		Container:  strings.ToLower(f.Ext),
		HasVideo:   isCodecPresent(f.VCodec),
		HasAudio:   isCodecPresent(f.ACodec),
		VideoCodec: valueOrZero(f.VCodec),
		AudioCodec: valueOrZero(f.ACodec),
		Note:       f.FormatNote,
	}

	if d.HasVideo && f.Height != nil && *f.Height > 0 {
		height := int(math.Round(*f.Height))
		d.Height = &height
	}

	if d.HasAudio {
		switch {
		case f.ABR != nil && *f.ABR > 0:
			abr := *f.ABR
			d.AudioBitrateKbps = &abr
		case !d.HasVideo && f.TBR != nil && *f.TBR > 0:
			// Audio-only entries without abr still report the total bitrate.
			tbr := *f.TBR
			d.AudioBitrateKbps = &tbr
		}
	}

	return d
}

func isCodecPresent(codec *string) bool {
	if codec == nil {
		return false
	}

	value := strings.TrimSpace(*codec)

	return value != "" && value != "none"
}

func durationSeconds(duration *float64) int64 {
	if duration == nil || *duration < 0 {
		return 0
	}

	return int64(math.Round(*duration))
}

func valueOrZero[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}

	return *v
}
