package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/tube-grabber/internal/constants"
)

// TestWriteDefaultConfig tests that init refuses to overwrite unless forced.
func TestWriteDefaultConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)

	require.NoError(t, WriteDefaultConfig(path, false))
	require.ErrorIs(t, WriteDefaultConfig(path, false), ErrConfigExists)
	require.NoError(t, WriteDefaultConfig(path, true))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	// The first key written is listen_address, the last one write_id3_tags.
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "listen_address:"))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "write_id3_tags:"))
}

// TestSetConfigValue tests order-preserving single-key updates.
func TestSetConfigValue(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	original := `# local overrides
log_level: info # keep me
po_token: ""
listen_address: ":8080"
`
	require.NoError(t, os.WriteFile(path, []byte(original), constants.DefaultFilePermissions))

	require.NoError(t, SetConfigValue(path, "po_token", "abc+def"))
	require.NoError(t, SetConfigValue(path, "min_height", "480"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(content)
	assert.Contains(t, text, "# keep me")
	assert.Contains(t, text, `po_token: "abc+def"`)
	assert.Less(t, strings.Index(text, "log_level"), strings.Index(text, "po_token"))
	assert.Less(t, strings.Index(text, "listen_address"), strings.Index(text, "min_height"))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "abc+def", cfg.POToken)
	assert.Equal(t, 480, cfg.MinHeight)
}

// TestSetConfigValue_Errors tests rejected keys and a missing file.
func TestSetConfigValue_Errors(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fresh.yaml")

	require.ErrorIs(t, SetConfigValue(path, "auth_token", "x"), ErrUnknownKey)

	require.NoError(t, SetConfigValue(path, "log_level", "debug"))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.ListenAddress)
}
