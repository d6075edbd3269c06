package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

// TestNewCatalog tests that invalid and duplicate descriptors are discarded.
func TestNewCatalog(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog(AssetInfo{Title: "t"}, []StreamDescriptor{
		{FormatID: "sb0", Container: "mhtml"},
		{FormatID: "18", Container: "mp4", HasVideo: true, HasAudio: true, Height: intPtr(360)},
		{FormatID: "", Container: "mp4", HasVideo: true},
		{FormatID: "18", Container: "webm", HasAudio: true},
		{FormatID: "140", Container: "m4a", HasAudio: true, AudioBitrateKbps: floatPtr(129.5)},
	})

	require.Len(t, catalog.Streams, 2)
	assert.Equal(t, "18", catalog.Streams[0].FormatID)
	assert.Equal(t, "mp4", catalog.Streams[0].Container)
	assert.Equal(t, "140", catalog.Streams[1].FormatID)
	assert.Equal(t, 360, catalog.MaxHeight())

	d, ok := catalog.Lookup("140")
	require.True(t, ok)
	assert.True(t, d.IsAudioOnly())
	assert.Equal(t, "130kbps", d.QualityLabel())

	_, ok = catalog.Lookup("137")
	assert.False(t, ok)
}

// TestStreamDescriptor_Kinds tests descriptor classification helpers.
func TestStreamDescriptor_Kinds(t *testing.T) {
	t.Parallel()

	combined := StreamDescriptor{FormatID: "22", HasVideo: true, HasAudio: true, Height: intPtr(720)}
	videoOnly := StreamDescriptor{FormatID: "137", HasVideo: true, Height: intPtr(1080)}
	audioOnly := StreamDescriptor{FormatID: "251", HasAudio: true}

	assert.True(t, combined.IsCombined())
	assert.True(t, videoOnly.IsVideoOnly())
	assert.True(t, audioOnly.IsAudioOnly())
	assert.Equal(t, "720p", combined.QualityLabel())
	assert.Equal(t, "unknown", audioOnly.QualityLabel())
	assert.Zero(t, audioOnly.HeightOrZero())
	assert.Zero(t, audioOnly.BitrateOrZero())
}

// TestParseOutputFormat tests output format validation.
func TestParseOutputFormat(t *testing.T) {
	t.Parallel()

	format, err := ParseOutputFormat(" MP3 ")
	require.NoError(t, err)
	assert.Equal(t, OutputMP3, format)
	assert.True(t, format.IsAudio())
	assert.Equal(t, ".mp3", format.Extension())

	format, err = ParseOutputFormat("mp4")
	require.NoError(t, err)
	assert.False(t, format.IsAudio())

	_, err = ParseOutputFormat("flac")
	require.ErrorIs(t, err, ErrUnknownOutputFormat)
}

// TestParseClientIdentities tests identity list parsing.
func TestParseClientIdentities(t *testing.T) {
	t.Parallel()

	identities, err := ParseClientIdentities([]string{"android", "TV", " ios "})
	require.NoError(t, err)
	assert.Equal(t, []ClientIdentity{IdentityAndroid, IdentityTV, IdentityIOS}, identities)

	_, err = ParseClientIdentities([]string{"android", "smart_fridge"})
	require.ErrorIs(t, err, ErrUnknownIdentity)
}

// TestParseRelaxations tests relaxation list parsing.
func TestParseRelaxations(t *testing.T) {
	t.Parallel()

	relaxations, err := ParseRelaxations([]string{"requested", "above_floor", "unrestricted"})
	require.NoError(t, err)
	assert.Equal(t, []Relaxation{RelaxRequested, RelaxAboveFloor, RelaxUnrestricted}, relaxations)

	_, err = ParseRelaxations([]string{"loose"})
	require.ErrorIs(t, err, ErrUnknownRelaxation)
}

// TestQualityPolicy_Apply tests policy relaxation.
func TestQualityPolicy_Apply(t *testing.T) {
	t.Parallel()

	policy := QualityPolicy{Kind: PolicyVideo, MinHeight: 720, PreferredHeight: 1080, RequestedFormatID: "137"}

	assert.Equal(t, policy, policy.Apply(RelaxRequested))
	assert.Equal(t,
		QualityPolicy{Kind: PolicyVideo, MinHeight: 720, PreferredHeight: 1080},
		policy.Apply(RelaxAboveFloor))
	assert.Equal(t,
		QualityPolicy{Kind: PolicyVideo, PreferredHeight: 1080},
		policy.Apply(RelaxUnrestricted))
}

// TestPolicyFromRequest tests policy construction from client input.
func TestPolicyFromRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		format      OutputFormat
		quality     string
		expected    QualityPolicy
		expectedErr error
	}{
		{
			name:     "audio default",
			format:   OutputMP3,
			expected: QualityPolicy{Kind: PolicyAudio},
		},
		{
			name:     "audio with format id",
			format:   OutputMP3,
			quality:  "251",
			expected: QualityPolicy{Kind: PolicyAudio, RequestedFormatID: "251"},
		},
		{
			name:     "video default",
			format:   OutputMP4,
			expected: QualityPolicy{Kind: PolicyVideo, MinHeight: 720, PreferredHeight: 1080},
		},
		{
			name:     "video with height label below floor",
			format:   OutputMP4,
			quality:  "480p",
			expected: QualityPolicy{Kind: PolicyVideo, MinHeight: 480, PreferredHeight: 480},
		},
		{
			name:     "video with height label above preferred",
			format:   OutputMP4,
			quality:  "2160p",
			expected: QualityPolicy{Kind: PolicyVideo, MinHeight: 720, PreferredHeight: 2160},
		},
		{
			name:     "best keeps defaults",
			format:   OutputMP4,
			quality:  "Best",
			expected: QualityPolicy{Kind: PolicyVideo, MinHeight: 720, PreferredHeight: 1080},
		},
		{
			name:     "video with format id",
			format:   OutputMP4,
			quality:  "137",
			expected: QualityPolicy{Kind: PolicyVideo, MinHeight: 720, PreferredHeight: 1080, RequestedFormatID: "137"},
		},
		{
			name:     "bare number is a format id",
			format:   OutputMP4,
			quality:  "720",
			expected: QualityPolicy{Kind: PolicyVideo, MinHeight: 720, PreferredHeight: 1080, RequestedFormatID: "720"},
		},
		{
			name:     "upper case height label",
			format:   OutputMP4,
			quality:  "720P",
			expected: QualityPolicy{Kind: PolicyVideo, MinHeight: 720, PreferredHeight: 720},
		},
		{
			name:        "selector expression rejected",
			format:      OutputMP4,
			quality:     "137+140",
			expectedErr: ErrInvalidQuality,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			policy, err := PolicyFromRequest(tt.format, tt.quality, 1080, 720)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, policy)
		})
	}
}
