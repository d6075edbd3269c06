package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/tube-grabber/internal/constants"
)

// Static error definitions for config file editing.
var (
	// ErrUnknownKey indicates a key that is not part of the configuration.
	ErrUnknownKey = errors.New("unknown configuration key")
	// ErrConfigExists indicates that init would overwrite an existing file.
	ErrConfigExists = errors.New("configuration file already exists")
	// ErrNotMapping indicates a configuration file whose root is not a mapping.
	ErrNotMapping = errors.New("configuration root must be a mapping")
)

// orderedKeys is the key order used when writing a fresh configuration file.
//
//nolint:gochecknoglobals // Immutable list used as a constant.
var orderedKeys = []string{
	"listen_address",
	"log_level",
	"scratch_dir",
	"output_path",
	"extractor_name",
	"extractor_paths",
	"transcoder_path",
	"audio_bitrate",
	"probe_timeout",
	"metadata_timeout",
	"download_timeout",
	"library_timeout",
	"transcode_timeout",
	"request_timeout",
	"audio_identities",
	"video_identities",
	"relaxations",
	"preferred_height",
	"min_height",
	"po_token",
	"po_token_service_url",
	"po_token_cache_ttl",
	"filename_template",
	"max_filename_length",
	"max_request_body",
	"max_concurrent_requests",
	"stale_artifact_age",
	"cors_allowed_origins",
	"user_agents",
	"write_id3_tags",
}

// WriteDefaultConfig writes a configuration file holding every default value.
func WriteDefaultConfig(configFilename string, overwrite bool) error {
	if configFilename == "" {
		configFilename = DefaultConfigFilename
	}

	if !overwrite {
		if _, err := os.Stat(configFilename); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, configFilename)
		}
	}

	var (
		defaults = Defaults()
		mapNode  = &yaml.Node{Kind: yaml.MappingNode}
	)

	for _, key := range orderedKeys {
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(defaults[key]); err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}

		mapNode.Content = append(mapNode.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			valueNode)
	}

	content, err := yaml.Marshal(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{mapNode}})
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err = os.WriteFile(configFilename, content, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SetConfigValue updates one scalar key in the configuration file while
// preserving the order, comments and style of everything else.
// A missing file is created from defaults first.
func SetConfigValue(configFilename, key, value string) error {
	if configFilename == "" {
		configFilename = DefaultConfigFilename
	}

	if !slices.Contains(orderedKeys, key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	originalContent, err := os.ReadFile(configFilename)
	if errors.Is(err, os.ErrNotExist) {
		if err = WriteDefaultConfig(configFilename, false); err != nil {
			return err
		}

		originalContent, err = os.ReadFile(configFilename)
	}

	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var node yaml.Node
	if err = yaml.Unmarshal(originalContent, &node); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err = setKeyInNode(&node, key, value); err != nil {
		return err
	}

	newContent, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err = os.WriteFile(configFilename, newContent, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setKeyInNode replaces or appends a scalar value in the document's root mapping.
func setKeyInNode(node *yaml.Node, key, value string) error {
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return ErrNotMapping
	}

	mapNode := node.Content[0]

	// Key-value pairs are stored as alternating nodes.
	for i := 0; i+1 < len(mapNode.Content); i += 2 {
		if mapNode.Content[i].Value != key {
			continue
		}

		valueNode := mapNode.Content[i+1]
		valueNode.Kind = yaml.ScalarNode
		valueNode.Tag = ""
		valueNode.Content = nil
		valueNode.Value = value

		if valueNode.Style == 0 {
			valueNode.Style = yaml.DoubleQuotedStyle
		}

		return nil
	}

	mapNode.Content = append(mapNode.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Value: value, Style: yaml.DoubleQuotedStyle})

	return nil
}
