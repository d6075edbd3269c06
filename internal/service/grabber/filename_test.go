package grabber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/tube-grabber/internal/media"
)

// TestFilenameBuilder_Build tests template rendering and sanitizing.
func TestFilenameBuilder_Build(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		template  string
		maxLength int
		info      media.AssetInfo
		extension string
		expected  string
	}{
		{
			name:      "default template",
			info:      media.AssetInfo{ID: "abc", Title: `AC/DC: "Back  in Black"?`},
			maxLength: 100,
			extension: ".mp3",
			expected:  "ACDC Back in Black.mp3",
		},
		{
			name:      "author and title",
			template:  "{{.author}} - {{.title}}",
			maxLength: 100,
			info:      media.AssetInfo{ID: "abc", Title: "Song", Author: "Band"},
			extension: ".mp4",
			expected:  "Band - Song.mp4",
		},
		{
			name:      "truncated by runes",
			maxLength: 5,
			info:      media.AssetInfo{ID: "abc", Title: "Привет мир"},
			extension: ".mp3",
			expected:  "Приве.mp3",
		},
		{
			name:      "empty title falls back to id",
			maxLength: 100,
			info:      media.AssetInfo{ID: "dQw4w9WgXcQ", Title: "???"},
			extension: ".mp4",
			expected:  "dQw4w9WgXcQ.mp4",
		},
		{
			name:      "title already ending with the extension",
			maxLength: 100,
			info:      media.AssetInfo{ID: "abc", Title: "Stems for remix.mp3"},
			extension: ".mp3",
			expected:  "Stems for remix.mp3",
		},
		{
			name:      "nothing at all",
			maxLength: 100,
			extension: ".mp4",
			expected:  "download.mp4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			builder, err := NewFilenameBuilder(tt.template, tt.maxLength)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, builder.Build(t.Context(), tt.info, tt.extension))
		})
	}

	_, err := NewFilenameBuilder("{{.title", 10)
	require.Error(t, err)
}

// TestContentDisposition tests that both filename forms are present.
func TestContentDisposition(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		`attachment; filename="Cafe _.mp3"; filename*=UTF-8''Caf%C3%A9%20%E2%99%AB.mp3`,
		ContentDisposition("Café ♫.mp3"))

	assert.Equal(t,
		`attachment; filename="plain.mp4"; filename*=UTF-8''plain.mp4`,
		ContentDisposition("plain.mp4"))
}
