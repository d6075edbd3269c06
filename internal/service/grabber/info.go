package grabber

import (
	"slices"

	"github.com/oshokin/tube-grabber/internal/media"
)

// newInfoResult splits a catalog into audio and video listings.
func newInfoResult(catalog *media.Catalog, source string) *InfoResult {
	result := &InfoResult{
		Info:         catalog.Info,
		AudioFormats: make([]media.StreamDescriptor, 0, len(catalog.Streams)),
		VideoFormats: make([]media.StreamDescriptor, 0, len(catalog.Streams)),
		Source:       source,
	}

	for _, d := range catalog.Streams {
		switch {
		case d.IsAudioOnly():
			result.AudioFormats = append(result.AudioFormats, d)
		case d.HasVideo:
			result.VideoFormats = append(result.VideoFormats, d)
		}
	}

	slices.SortStableFunc(result.AudioFormats, func(a, b media.StreamDescriptor) int {
		switch {
		case a.BitrateOrZero() > b.BitrateOrZero():
			return -1
		case a.BitrateOrZero() < b.BitrateOrZero():
			return 1
		default:
			return 0
		}
	})

	slices.SortStableFunc(result.VideoFormats, func(a, b media.StreamDescriptor) int {
		return b.HeightOrZero() - a.HeightOrZero()
	})

	return result
}
