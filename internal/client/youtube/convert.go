package youtube

import (
	"mime"
	"strconv"
	"strings"

	yt "github.com/kkdai/youtube/v2"

	"github.com/oshokin/tube-grabber/internal/media"
)

const bitsPerKilobit = 1000

// catalogFromVideo converts the library view of an asset into a catalog.
func catalogFromVideo(video *yt.Video) media.Catalog {
	descriptors := make([]media.StreamDescriptor, 0, len(video.Formats))

	for i := range video.Formats {
		if d, ok := descriptorFromFormat(&video.Formats[i]); ok {
			descriptors = append(descriptors, d)
		}
	}

	return media.NewCatalog(assetInfo(video), descriptors)
}

func assetInfo(video *yt.Video) media.AssetInfo {
	return media.AssetInfo{
		ID:            video.ID,
		Title:         video.Title,
		Author:        video.Author,
		ThumbnailURL:  bestThumbnail(video),
		LengthSeconds: int64(video.Duration.Seconds()),
		ViewCount:     int64(video.Views),
	}
}

func bestThumbnail(video *yt.Video) string {
	var (
		best     string
		bestArea int64 = -1
	)

	for _, thumb := range video.Thumbnails {
		if area := int64(thumb.Width) * int64(thumb.Height); area > bestArea {
			best, bestArea = thumb.URL, area
		}
	}

	return best
}

// descriptorFromFormat maps a library format; the second result is false for
// formats without a recognizable track.
func descriptorFromFormat(format *yt.Format) (media.StreamDescriptor, bool) {
	mediaType, params, err := mime.ParseMediaType(format.MimeType)
	if err != nil {
		return media.StreamDescriptor{}, false
	}

	kind, container, _ := strings.Cut(mediaType, "/")
	videoCodec, audioCodec := splitCodecs(kind, params["codecs"])

	d := media.StreamDescriptor{
		FormatID:   strconv.Itoa(format.ItagNo),
		Container:  container,
		HasVideo:   kind == "video",
		HasAudio:   kind == "audio" || format.AudioChannels > 0 || audioCodec != "",
		VideoCodec: videoCodec,
		AudioCodec: audioCodec,
		Note:       format.QualityLabel,
	}

	if d.HasVideo && format.Height > 0 {
		height := format.Height
		d.Height = &height
	}

	if d.HasAudio {
		if bitrate := formatBitrate(format); bitrate > 0 {
			kbps := float64(bitrate) / bitsPerKilobit
			d.AudioBitrateKbps = &kbps
		}
	}

	if d.Note == "" {
		d.Note = format.AudioQuality
	}

	return d, d.IsValid()
}

// splitCodecs separates the codecs parameter of a mime type into video and audio codecs.
func splitCodecs(kind, codecs string) (string, string) {
	var videoCodec, audioCodec string

	for codec := range strings.SplitSeq(codecs, ",") {
		codec = strings.TrimSpace(codec)

		switch {
		case codec == "":
		case kind == "audio", isAudioCodec(codec):
			if audioCodec == "" {
				audioCodec = codec
			}
		default:
			if videoCodec == "" {
				videoCodec = codec
			}
		}
	}

	return videoCodec, audioCodec
}

func isAudioCodec(codec string) bool {
	for _, prefix := range []string{"mp4a", "opus", "vorbis", "ac-3", "ec-3", "flac"} {
		if strings.HasPrefix(codec, prefix) {
			return true
		}
	}

	return false
}

func formatBitrate(format *yt.Format) int {
	if format.AverageBitrate > 0 {
		return format.AverageBitrate
	}

	return format.Bitrate
}
