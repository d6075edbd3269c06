package media

import (
	"fmt"
	"strconv"
	"strings"
)

// StreamDescriptor describes one encoded stream offered for an asset.
// A descriptor always carries video, audio, or both.
type StreamDescriptor struct {
	// FormatID is unique within one catalog.
	FormatID string
	// Container is the file extension without the dot, e.g. "mp4" or "webm".
	Container string
	// HasVideo reports whether the stream carries a video track.
	HasVideo bool
	// HasAudio reports whether the stream carries an audio track.
	HasAudio bool
	// Height is the vertical resolution; nil for audio-only streams or when unknown.
	Height *int
	// AudioBitrateKbps is the average audio bitrate; nil when unknown.
	AudioBitrateKbps *float64
	// VideoCodec is the codec name as reported by the source.
	VideoCodec string
	// AudioCodec is the codec name as reported by the source.
	AudioCodec string
	// Note is a human-readable quality label such as "1080p" or "medium".
	Note string
}

// IsCombined reports whether the stream carries both tracks.
func (d *StreamDescriptor) IsCombined() bool {
	return d.HasVideo && d.HasAudio
}

// IsVideoOnly reports whether the stream carries video without audio.
func (d *StreamDescriptor) IsVideoOnly() bool {
	return d.HasVideo && !d.HasAudio
}

// IsAudioOnly reports whether the stream carries audio without video.
func (d *StreamDescriptor) IsAudioOnly() bool {
	return d.HasAudio && !d.HasVideo
}

// IsValid reports whether the descriptor may appear in a catalog.
func (d *StreamDescriptor) IsValid() bool {
	return d.FormatID != "" && (d.HasVideo || d.HasAudio)
}

// HeightOrZero returns the height or 0 when unknown.
func (d *StreamDescriptor) HeightOrZero() int {
	if d.Height == nil {
		return 0
	}

	return *d.Height
}

// BitrateOrZero returns the audio bitrate or 0 when unknown.
func (d *StreamDescriptor) BitrateOrZero() float64 {
	if d.AudioBitrateKbps == nil {
		return 0
	}

	return *d.AudioBitrateKbps
}

// QualityLabel renders a short label for listings.
func (d *StreamDescriptor) QualityLabel() string {
	switch {
	case d.HasVideo && d.Height != nil:
		return strconv.Itoa(*d.Height) + "p"
	case d.AudioBitrateKbps != nil:
		return strconv.FormatFloat(*d.AudioBitrateKbps, 'f', 0, 64) + "kbps"
	case d.Note != "":
		return d.Note
	default:
		return "unknown"
	}
}

// AssetInfo holds the human-facing details of an asset.
type AssetInfo struct {
	// ID is the platform identifier of the asset.
	ID string
	// Title is the asset title.
	Title string
	// Author is the uploader or channel name.
	Author string
	// ThumbnailURL points at the largest known thumbnail.
	ThumbnailURL string
	// LengthSeconds is the duration of the asset.
	LengthSeconds int64
	// ViewCount is the number of views.
	ViewCount int64
}

// Catalog is the ordered list of streams offered for one asset under one client identity.
type Catalog struct {
	// Info describes the asset.
	Info AssetInfo
	// Streams keeps the order the source reported them in.
	Streams []StreamDescriptor
}

// Lookup returns the descriptor with the given id.
func (c *Catalog) Lookup(formatID string) (*StreamDescriptor, bool) {
	for i := range c.Streams {
		if c.Streams[i].FormatID == formatID {
			return &c.Streams[i], true
		}
	}

	return nil, false
}

// MaxHeight returns the tallest video height in the catalog.
func (c *Catalog) MaxHeight() int {
	maxHeight := 0

	for i := range c.Streams {
		if h := c.Streams[i].HeightOrZero(); c.Streams[i].HasVideo && h > maxHeight {
			maxHeight = h
		}
	}

	return maxHeight
}

// NewCatalog builds a catalog from raw descriptors, discarding invalid ones
// and keeping the first occurrence of duplicated ids.
func NewCatalog(info AssetInfo, descriptors []StreamDescriptor) Catalog {
	var (
		seen    = make(map[string]struct{}, len(descriptors))
		streams = make([]StreamDescriptor, 0, len(descriptors))
	)

	for _, d := range descriptors {
		if !d.IsValid() {
			continue
		}

		if _, ok := seen[d.FormatID]; ok {
			continue
		}

		seen[d.FormatID] = struct{}{}

		streams = append(streams, d)
	}

	return Catalog{Info: info, Streams: streams}
}

// OutputFormat is the container a client asks for.
type OutputFormat string

const (
	// OutputMP3 asks for an mp3 audio file.
	OutputMP3 OutputFormat = "mp3"
	// OutputMP4 asks for an mp4 video file.
	OutputMP4 OutputFormat = "mp4"
)

// ParseOutputFormat validates a requested output format.
func ParseOutputFormat(value string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(value))) {
	case OutputMP3:
		return OutputMP3, nil
	case OutputMP4:
		return OutputMP4, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOutputFormat, value)
	}
}

// Extension returns the file extension including the dot.
func (f OutputFormat) Extension() string {
	return "." + string(f)
}

// IsAudio reports whether the format is audio-only.
func (f OutputFormat) IsAudio() bool {
	return f == OutputMP3
}
