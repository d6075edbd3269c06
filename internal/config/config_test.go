package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/tube-grabber/internal/constants"
	"github.com/oshokin/tube-grabber/internal/media"
)

func loadDefaults(t *testing.T) *Config {
	t.Helper()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent", DefaultConfigFilename+".missing"))
	require.Error(t, err, "explicit missing file must fail")
	require.Nil(t, cfg)

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	require.NoError(t, WriteDefaultConfig(path, false))

	cfg, err = LoadConfig(path)
	require.NoError(t, err)

	return cfg
}

// TestLoadConfig_Defaults tests that a freshly initialized file validates and parses.
func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := loadDefaults(t)
	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, ":8080", cfg.ListenAddress)
	assert.Equal(t, zapcore.InfoLevel, cfg.ParsedLogLevel)
	assert.Equal(t, 5*time.Second, cfg.ParsedProbeTimeout)
	assert.Equal(t, 30*time.Second, cfg.ParsedMetadataTimeout)
	assert.Equal(t, 10*time.Minute, cfg.ParsedDownloadTimeout)
	assert.Equal(t, int64(64000), cfg.ParsedMaxRequestBody)
	assert.Equal(t, []media.ClientIdentity{media.IdentityIOS, media.IdentityWeb}, cfg.ParsedAudioIdentities)
	assert.Equal(t,
		[]media.ClientIdentity{media.IdentityAndroid, media.IdentityTV, media.IdentityIOS, media.IdentityWeb},
		cfg.ParsedVideoIdentities)
	assert.Equal(t,
		[]media.Relaxation{media.RelaxRequested, media.RelaxAboveFloor, media.RelaxUnrestricted},
		cfg.ParsedRelaxations)
	assert.Equal(t, 1080, cfg.PreferredHeight)
	assert.Equal(t, 720, cfg.MinHeight)
	assert.True(t, cfg.WriteID3Tags)
	assert.Empty(t, cfg.UserAgents)
}

// TestLoadConfig_FileValues tests that file values override defaults.
func TestLoadConfig_FileValues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := `listen_address: "127.0.0.1:9000"
log_level: debug
min_height: 480
video_identities: [tv, web]
`
	require.NoError(t, os.WriteFile(path, []byte(content), constants.DefaultFilePermissions))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddress)
	assert.Equal(t, zapcore.DebugLevel, cfg.ParsedLogLevel)
	assert.Equal(t, 480, cfg.MinHeight)
	assert.Equal(t, []media.ClientIdentity{media.IdentityTV, media.IdentityWeb}, cfg.ParsedVideoIdentities)
	assert.Equal(t, "30s", cfg.MetadataTimeout, "unset keys keep defaults")
}

// TestLoadConfig_InvalidYAML tests that malformed files are rejected.
func TestLoadConfig_InvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_address: [unclosed"), constants.DefaultFilePermissions))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

// TestValidateConfig tests validation failures.
func TestValidateConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mutate      func(cfg *Config)
		expectedErr error
	}{
		{
			name:        "unknown log level",
			mutate:      func(cfg *Config) { cfg.LogLevel = "loud" },
			expectedErr: ErrUnknownLogLevel,
		},
		{
			name:        "empty scratch dir",
			mutate:      func(cfg *Config) { cfg.ScratchDir = " " },
			expectedErr: ErrEmptyScratchDir,
		},
		{
			name:        "zero download timeout",
			mutate:      func(cfg *Config) { cfg.DownloadTimeout = "0s" },
			expectedErr: ErrNonPositiveTimeout,
		},
		{
			name:        "floor above preferred",
			mutate:      func(cfg *Config) { cfg.MinHeight = 1440 },
			expectedErr: ErrInvalidHeights,
		},
		{
			name:        "empty identities",
			mutate:      func(cfg *Config) { cfg.AudioIdentities = nil },
			expectedErr: ErrEmptyIdentities,
		},
		{
			name:        "unknown identity",
			mutate:      func(cfg *Config) { cfg.VideoIdentities = []string{"android", "toaster"} },
			expectedErr: media.ErrUnknownIdentity,
		},
		{
			name:        "empty relaxations",
			mutate:      func(cfg *Config) { cfg.Relaxations = []string{} },
			expectedErr: ErrEmptyRelaxations,
		},
		{
			name:        "unknown relaxation",
			mutate:      func(cfg *Config) { cfg.Relaxations = []string{"whatever"} },
			expectedErr: media.ErrUnknownRelaxation,
		},
		{
			name:        "no concurrency",
			mutate:      func(cfg *Config) { cfg.MaxConcurrentRequests = 0 },
			expectedErr: ErrInvalidConcurrentRequests,
		},
		{
			name:        "no filename length",
			mutate:      func(cfg *Config) { cfg.MaxFilenameLength = 0 },
			expectedErr: ErrInvalidFilenameLength,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := loadDefaults(t)
			tt.mutate(cfg)

			require.ErrorIs(t, ValidateConfig(cfg), tt.expectedErr)
		})
	}
}

// TestValidateConfig_ParseErrors tests values that fail to parse.
func TestValidateConfig_ParseErrors(t *testing.T) {
	t.Parallel()

	cfg := loadDefaults(t)
	cfg.MaxRequestBody = "lots"
	require.Error(t, ValidateConfig(cfg))

	cfg = loadDefaults(t)
	cfg.FilenameTemplate = "{{.title"
	require.Error(t, ValidateConfig(cfg))

	cfg = loadDefaults(t)
	cfg.ProbeTimeout = "soon"
	require.Error(t, ValidateConfig(cfg))
}

// TestValidateConfig_Normalization tests derived field normalization.
func TestValidateConfig_Normalization(t *testing.T) {
	t.Parallel()

	cfg := loadDefaults(t)
	cfg.FilenameTemplate = ""
	cfg.POToken = "  token  "
	cfg.POTokenServiceURL = "http://localhost:4416/ "

	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, DefaultFilenameTemplate, cfg.FilenameTemplate)
	assert.Equal(t, "token", cfg.POToken)
	assert.Equal(t, "http://localhost:4416", cfg.POTokenServiceURL)
}
