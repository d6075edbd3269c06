package ytdlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalogJSON = `{
  "_type": "video",
  "id": "dQw4w9WgXcQ",
  "title": "Never Gonna Give You Up",
  "uploader": "Rick Astley",
  "thumbnail": "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
  "duration": 212.4,
  "view_count": 1600000000,
  "formats": [
    {"format_id": "sb0", "ext": "mhtml", "vcodec": "none", "acodec": "none", "format_note": "storyboard"},
    {"format_id": "139", "ext": "m4a", "vcodec": "none", "acodec": "mp4a.40.5", "abr": 48.8},
    {"format_id": "251", "ext": "webm", "vcodec": "none", "acodec": "opus", "abr": 135.2},
    {"format_id": "140", "ext": "m4a", "vcodec": "none", "acodec": "mp4a.40.2", "tbr": 129.5},
    {"format_id": "18", "ext": "mp4", "vcodec": "avc1.42001E", "acodec": "mp4a.40.2", "height": 360, "abr": 96},
    {"format_id": "137", "ext": "mp4", "vcodec": "avc1.640028", "acodec": "none", "height": 1080},
    {"format_id": "137", "ext": "webm", "vcodec": "vp9", "acodec": "none", "height": 720},
    {"format_id": "unknown", "ext": "mp4", "height": 480}
  ]
}`

// TestParseCatalog tests conversion of a JSON dump into strict descriptors.
func TestParseCatalog(t *testing.T) {
	t.Parallel()

	catalog, err := ParseCatalog([]byte(sampleCatalogJSON))
	require.NoError(t, err)

	assert.Equal(t, "dQw4w9WgXcQ", catalog.Info.ID)
	assert.Equal(t, "Never Gonna Give You Up", catalog.Info.Title)
	assert.Equal(t, "Rick Astley", catalog.Info.Author)
	assert.Equal(t, int64(212), catalog.Info.LengthSeconds)
	assert.Equal(t, int64(1600000000), catalog.Info.ViewCount)

	ids := make([]string, 0, len(catalog.Streams))
	for _, s := range catalog.Streams {
		ids = append(ids, s.FormatID)
	}

	// Storyboards, codec-less entries and duplicated ids are discarded.
	assert.Equal(t, []string{"139", "251", "140", "18", "137"}, ids)

	audio, ok := catalog.Lookup("140")
	require.True(t, ok)
	assert.True(t, audio.IsAudioOnly())
	assert.Nil(t, audio.Height)
	require.NotNil(t, audio.AudioBitrateKbps)
	assert.InDelta(t, 129.5, *audio.AudioBitrateKbps, 0.001)

	combined, ok := catalog.Lookup("18")
	require.True(t, ok)
	assert.True(t, combined.IsCombined())
	assert.Equal(t, 360, combined.HeightOrZero())

	video, ok := catalog.Lookup("137")
	require.True(t, ok)
	assert.True(t, video.IsVideoOnly())
	assert.Equal(t, "mp4", video.Container)
	assert.Equal(t, 1080, video.HeightOrZero())
	assert.Nil(t, video.AudioBitrateKbps)
}

// TestParseCatalog_Errors tests rejected dumps.
func TestParseCatalog_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		expectedErr error
	}{
		{
			name:  "not json",
			input: "ERROR: something went wrong",
		},
		{
			name:        "playlist",
			input:       `{"_type": "playlist", "entries": []}`,
			expectedErr: ErrPlaylistURL,
		},
		{
			name:        "no usable streams",
			input:       `{"id": "x", "formats": [{"format_id": "sb0", "vcodec": "none", "acodec": "none"}]}`,
			expectedErr: ErrEmptyCatalog,
		},
		{
			name:        "no formats",
			input:       `{"id": "x"}`,
			expectedErr: ErrEmptyCatalog,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseCatalog([]byte(tt.input))
			require.Error(t, err)

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
			}
		})
	}
}

// TestParseCatalog_AuthorFallback tests that the channel name stands in for a missing uploader.
func TestParseCatalog_AuthorFallback(t *testing.T) {
	t.Parallel()

	catalog, err := ParseCatalog([]byte(`{"id":"x","channel":"Chan","formats":[{"format_id":"251","acodec":"opus"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "Chan", catalog.Info.Author)
}
