package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNormalizeURL tests URL validation and playlist parameter stripping.
func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		expected    string
		expectedErr error
	}{
		{
			name:     "plain watch url",
			input:    "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			expected: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:     "playlist and radio parameters stripped",
			input:    "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=RDdQw4w9WgXcQ&start_radio=1&index=2&t=42",
			expected: "https://www.youtube.com/watch?t=42&v=dQw4w9WgXcQ",
		},
		{
			name:     "short link",
			input:    "https://youtu.be/dQw4w9WgXcQ?si=abc",
			expected: "https://www.youtube.com/watch?si=abc&v=dQw4w9WgXcQ",
		},
		{
			name:     "shorts path",
			input:    "https://youtube.com/shorts/dQw4w9WgXcQ",
			expected: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:     "mobile subdomain shorts path",
			input:    "https://m.youtube.com/shorts/dQw4w9WgXcQ",
			expected: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:     "look-alike host is not rewritten",
			input:    "https://notyoutube.com/shorts/dQw4w9WgXcQ?list=PL1",
			expected: "https://notyoutube.com/shorts/dQw4w9WgXcQ",
		},
		{
			name:     "look-alike short link host is not rewritten",
			input:    "https://notyoutu.be/dQw4w9WgXcQ",
			expected: "https://notyoutu.be/dQw4w9WgXcQ",
		},
		{
			name:     "fragment dropped",
			input:    "https://example.com/video#frag",
			expected: "https://example.com/video",
		},
		{
			name:        "empty",
			input:       "  ",
			expectedErr: ErrMissingURL,
		},
		{
			name:        "not a url",
			input:       "dQw4w9WgXcQ",
			expectedErr: ErrInvalidURL,
		},
		{
			name:        "unsupported scheme",
			input:       "ftp://youtube.com/watch?v=dQw4w9WgXcQ",
			expectedErr: ErrInvalidURL,
		},
		{
			name:        "empty short link",
			input:       "https://youtu.be/",
			expectedErr: ErrInvalidURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := NormalizeURL(tt.input)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestVideoID tests extraction of the v parameter.
func TestVideoID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "dQw4w9WgXcQ", VideoID("https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.Empty(t, VideoID("https://example.com/video"))
}
