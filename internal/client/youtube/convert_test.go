package youtube

import (
	"testing"
	"time"

	yt "github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/tube-grabber/internal/media"
)

func testVideo() *yt.Video {
	return &yt.Video{
		ID:       "dQw4w9WgXcQ",
		Title:    "Never Gonna Give You Up",
		Author:   "Rick Astley",
		Views:    1500000000,
		Duration: 213 * time.Second,
		Thumbnails: yt.Thumbnails{
			{URL: "https://i.ytimg.com/default.jpg", Width: 120, Height: 90},
			{URL: "https://i.ytimg.com/maxres.jpg", Width: 1280, Height: 720},
			{URL: "https://i.ytimg.com/hq.jpg", Width: 480, Height: 360},
		},
		Formats: yt.FormatList{
			{
				ItagNo:        18,
				MimeType:      `video/mp4; codecs="avc1.42001E, mp4a.40.2"`,
				Height:        360,
				Width:         640,
				Bitrate:       500000,
				AudioChannels: 2,
				QualityLabel:  "360p",
			},
			{
				ItagNo:       137,
				MimeType:     `video/mp4; codecs="avc1.640028"`,
				Height:       1080,
				Width:        1920,
				Bitrate:      4000000,
				QualityLabel: "1080p",
			},
			{
				ItagNo:         140,
				MimeType:       `audio/mp4; codecs="mp4a.40.2"`,
				Bitrate:        130000,
				AverageBitrate: 129000,
				AudioChannels:  2,
				AudioQuality:   "AUDIO_QUALITY_MEDIUM",
			},
			{
				ItagNo:   999,
				MimeType: "not a mime type;;",
			},
			{
				ItagNo:        140,
				MimeType:      `audio/mp4; codecs="mp4a.40.2"`,
				AudioChannels: 2,
			},
		},
	}
}

// TestCatalogFromVideo tests conversion of library formats into descriptors.
func TestCatalogFromVideo(t *testing.T) {
	t.Parallel()

	catalog := catalogFromVideo(testVideo())

	assert.Equal(t, media.AssetInfo{
		ID:            "dQw4w9WgXcQ",
		Title:         "Never Gonna Give You Up",
		Author:        "Rick Astley",
		ThumbnailURL:  "https://i.ytimg.com/maxres.jpg",
		LengthSeconds: 213,
		ViewCount:     1500000000,
	}, catalog.Info)

	require.Len(t, catalog.Streams, 3, "unparsable and duplicated formats are dropped")

	combined := catalog.Streams[0]
	assert.Equal(t, "18", combined.FormatID)
	assert.Equal(t, "mp4", combined.Container)
	assert.True(t, combined.IsCombined())
	assert.Equal(t, 360, combined.HeightOrZero())
	assert.Equal(t, "avc1.42001E", combined.VideoCodec)
	assert.Equal(t, "mp4a.40.2", combined.AudioCodec)

	videoOnly := catalog.Streams[1]
	assert.True(t, videoOnly.IsVideoOnly())
	assert.Equal(t, 1080, videoOnly.HeightOrZero())
	assert.Nil(t, videoOnly.AudioBitrateKbps)

	audioOnly := catalog.Streams[2]
	assert.True(t, audioOnly.IsAudioOnly())
	assert.Nil(t, audioOnly.Height)
	assert.InDelta(t, 129.0, audioOnly.BitrateOrZero(), 0.001)
	assert.Equal(t, "AUDIO_QUALITY_MEDIUM", audioOnly.Note)
}

// TestSplitCodecs tests codec separation by kind.
func TestSplitCodecs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		kind          string
		codecs        string
		expectedVideo string
		expectedAudio string
	}{
		{name: "combined", kind: "video", codecs: "avc1.42001E, mp4a.40.2", expectedVideo: "avc1.42001E", expectedAudio: "mp4a.40.2"},
		{name: "webm video", kind: "video", codecs: "vp9", expectedVideo: "vp9"},
		{name: "opus audio", kind: "audio", codecs: "opus", expectedAudio: "opus"},
		{name: "empty", kind: "video"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			videoCodec, audioCodec := splitCodecs(tt.kind, tt.codecs)
			assert.Equal(t, tt.expectedVideo, videoCodec)
			assert.Equal(t, tt.expectedAudio, audioCodec)
		})
	}
}
