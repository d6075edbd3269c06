package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/tube-grabber/internal/logger"
	"github.com/oshokin/tube-grabber/internal/media"
	"github.com/oshokin/tube-grabber/internal/utils"
)

// Config holds all configuration settings.
type Config struct {
	// ListenAddress is the address the HTTP server binds to.
	ListenAddress string `mapstructure:"listen_address" yaml:"listen_address"`
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	// ScratchDir is where request-scoped temporary files are written.
	ScratchDir string `mapstructure:"scratch_dir" yaml:"scratch_dir"`
	// OutputPath is the directory the CLI saves files to.
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`
	// ExtractorName is looked up on PATH when no configured location works.
	ExtractorName string `mapstructure:"extractor_name" yaml:"extractor_name"`
	// ExtractorPaths lists install locations probed in order.
	ExtractorPaths []string `mapstructure:"extractor_paths" yaml:"extractor_paths"`
	// TranscoderPath is the ffmpeg binary name or path.
	TranscoderPath string `mapstructure:"transcoder_path" yaml:"transcoder_path"`
	// AudioBitrate is the mp3 bitrate passed to the transcoder, e.g. "192k".
	AudioBitrate string `mapstructure:"audio_bitrate" yaml:"audio_bitrate"`
	// ProbeTimeout bounds one tool probe.
	ProbeTimeout string `mapstructure:"probe_timeout" yaml:"probe_timeout"`
	// MetadataTimeout bounds one catalog fetch.
	MetadataTimeout string `mapstructure:"metadata_timeout" yaml:"metadata_timeout"`
	// DownloadTimeout bounds one extractor download.
	DownloadTimeout string `mapstructure:"download_timeout" yaml:"download_timeout"`
	// LibraryTimeout bounds the library fallback path.
	LibraryTimeout string `mapstructure:"library_timeout" yaml:"library_timeout"`
	// TranscodeTimeout bounds one transcoder run.
	TranscodeTimeout string `mapstructure:"transcode_timeout" yaml:"transcode_timeout"`
	// RequestTimeout bounds a whole request.
	RequestTimeout string `mapstructure:"request_timeout" yaml:"request_timeout"`
	// AudioIdentities is the identity order for audio cascades.
	AudioIdentities []string `mapstructure:"audio_identities" yaml:"audio_identities"`
	// VideoIdentities is the identity order for video cascades.
	VideoIdentities []string `mapstructure:"video_identities" yaml:"video_identities"`
	// Relaxations is the loosening order applied across identities.
	Relaxations []string `mapstructure:"relaxations" yaml:"relaxations"`
	// PreferredHeight is the default target video height.
	PreferredHeight int `mapstructure:"preferred_height" yaml:"preferred_height"`
	// MinHeight is the default video height floor.
	MinHeight int `mapstructure:"min_height" yaml:"min_height"`
	// POToken is a static proof-of-origin token.
	POToken string `mapstructure:"po_token" yaml:"po_token"`
	// POTokenServiceURL is the base URL of a token provider service.
	POTokenServiceURL string `mapstructure:"po_token_service_url" yaml:"po_token_service_url"`
	// POTokenCacheTTL is how long service-issued tokens are reused.
	POTokenCacheTTL string `mapstructure:"po_token_cache_ttl" yaml:"po_token_cache_ttl"`
	// FilenameTemplate renders the download filename stem.
	FilenameTemplate string `mapstructure:"filename_template" yaml:"filename_template"`
	// MaxFilenameLength is the maximum number of runes in a filename stem.
	MaxFilenameLength int `mapstructure:"max_filename_length" yaml:"max_filename_length"`
	// MaxRequestBody limits JSON request bodies, e.g. "64KB".
	MaxRequestBody string `mapstructure:"max_request_body" yaml:"max_request_body"`
	// MaxConcurrentRequests is the number of requests served at once.
	MaxConcurrentRequests int64 `mapstructure:"max_concurrent_requests" yaml:"max_concurrent_requests"`
	// StaleArtifactAge is the age after which leftover scratch files are swept.
	StaleArtifactAge string `mapstructure:"stale_artifact_age" yaml:"stale_artifact_age"`
	// CORSAllowedOrigins lists origins allowed to call the HTTP API.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins" yaml:"cors_allowed_origins"`
	// UserAgents is the browser User-Agent pool rotated across library stream requests.
	UserAgents []string `mapstructure:"user_agents" yaml:"user_agents"`
	// WriteID3Tags enables title, artist and cover tags on mp3 output.
	WriteID3Tags bool `mapstructure:"write_id3_tags" yaml:"write_id3_tags"`
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level `mapstructure:"-" yaml:"-"`
	// ParsedProbeTimeout is the parsed probe timeout.
	ParsedProbeTimeout time.Duration `mapstructure:"-" yaml:"-"`
	// ParsedMetadataTimeout is the parsed catalog fetch timeout.
	ParsedMetadataTimeout time.Duration `mapstructure:"-" yaml:"-"`
	// ParsedDownloadTimeout is the parsed extractor download timeout.
	ParsedDownloadTimeout time.Duration `mapstructure:"-" yaml:"-"`
	// ParsedLibraryTimeout is the parsed library fallback timeout.
	ParsedLibraryTimeout time.Duration `mapstructure:"-" yaml:"-"`
	// ParsedTranscodeTimeout is the parsed transcoder timeout.
	ParsedTranscodeTimeout time.Duration `mapstructure:"-" yaml:"-"`
	// ParsedRequestTimeout is the parsed whole-request timeout.
	ParsedRequestTimeout time.Duration `mapstructure:"-" yaml:"-"`
	// ParsedPOTokenCacheTTL is the parsed token cache TTL.
	ParsedPOTokenCacheTTL time.Duration `mapstructure:"-" yaml:"-"`
	// ParsedStaleArtifactAge is the parsed sweep age.
	ParsedStaleArtifactAge time.Duration `mapstructure:"-" yaml:"-"`
	// ParsedMaxRequestBody is the parsed request body limit in bytes.
	ParsedMaxRequestBody int64 `mapstructure:"-" yaml:"-"`
	// ParsedAudioIdentities is the validated audio identity order.
	ParsedAudioIdentities []media.ClientIdentity `mapstructure:"-" yaml:"-"`
	// ParsedVideoIdentities is the validated video identity order.
	ParsedVideoIdentities []media.ClientIdentity `mapstructure:"-" yaml:"-"`
	// ParsedRelaxations is the validated relaxation order.
	ParsedRelaxations []media.Relaxation `mapstructure:"-" yaml:"-"`
}

const (
	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".tube-grabber.yaml"

	// EnvPrefix prefixes environment overrides, e.g. TUBE_GRABBER_LISTEN_ADDRESS.
	EnvPrefix = "TUBE_GRABBER"

	// DefaultFilenameTemplate is the default template for download filenames.
	DefaultFilenameTemplate = "{{.title}}"

	// DefaultFilenameFallback is used when a title sanitizes to nothing.
	DefaultFilenameFallback = "download"
)

// Static error definitions for better error handling.
var (
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrNonPositiveTimeout indicates a zero or negative timeout.
	ErrNonPositiveTimeout = errors.New("timeout must be positive")
	// ErrInvalidHeights indicates inconsistent height settings.
	ErrInvalidHeights = errors.New("min_height must be positive and not greater than preferred_height")
	// ErrEmptyIdentities indicates an empty identity list.
	ErrEmptyIdentities = errors.New("identity list cannot be empty")
	// ErrEmptyRelaxations indicates an empty relaxation list.
	ErrEmptyRelaxations = errors.New("relaxation list cannot be empty")
	// ErrInvalidConcurrentRequests indicates that the concurrent requests count is invalid.
	ErrInvalidConcurrentRequests = errors.New("max_concurrent_requests must be a positive integer")
	// ErrInvalidFilenameLength indicates a non-positive filename length.
	ErrInvalidFilenameLength = errors.New("max_filename_length must be a positive integer")
	// ErrEmptyScratchDir indicates a missing scratch directory.
	ErrEmptyScratchDir = errors.New("scratch_dir cannot be empty")
)

// Defaults returns the built-in configuration values keyed by their file names.
func Defaults() map[string]any {
	return map[string]any{
		"listen_address":  ":8080",
		"log_level":       "info",
		"scratch_dir":     "temp",
		"output_path":     ".",
		"extractor_name":  "yt-dlp",
		"extractor_paths": []string{"/usr/local/bin/yt-dlp", "/usr/bin/yt-dlp", "/opt/homebrew/bin/yt-dlp", "~/.local/bin/yt-dlp"},
		"transcoder_path": "ffmpeg",
		"audio_bitrate":   "192k",
		"probe_timeout":   "5s",
		"metadata_timeout":        "30s",
		"download_timeout":        "10m",
		"library_timeout":         "5m",
		"transcode_timeout":       "5m",
		"request_timeout":         "12m",
		"audio_identities":        []string{"ios", "web"},
		"video_identities":        []string{"android", "tv", "ios", "web"},
		"relaxations":             []string{"requested", "above_floor", "unrestricted"},
		"preferred_height":        1080,
		"min_height":              720,
		"po_token":                "",
		"po_token_service_url":    "",
		"po_token_cache_ttl":      "6h",
		"filename_template":       DefaultFilenameTemplate,
		"max_filename_length":     100,
		"max_request_body":        "64KB",
		"max_concurrent_requests": 1,
		"stale_artifact_age":      "1h",
		"cors_allowed_origins":    []string{"*"},
		"user_agents":             []string{},
		"write_id3_tags":          true,
	}
}

// LoadConfig loads configuration from a YAML file, defaults and environment.
// A missing file is an error only when its name was given explicitly.
func LoadConfig(configFilename string) (*Config, error) {
	v := newViper()

	explicit := configFilename != ""
	if !explicit {
		configFilename = DefaultConfigFilename
	}

	v.SetConfigFile(configFilename)

	if err := v.ReadInConfig(); err != nil {
		if explicit || !isNotExist(err) {
			return nil, fmt.Errorf("failed to read config from file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Token settings are also accepted under their conventional names.
	_ = v.BindEnv("po_token", EnvPrefix+"_PO_TOKEN", "PO_TOKEN")
	_ = v.BindEnv("po_token_service_url", EnvPrefix+"_PO_TOKEN_SERVICE_URL", "PO_TOKEN_SERVICE_URL")

	return v
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError

	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// ValidateConfig checks the configuration for validity and sets derived fields.
//
//nolint:funlen,cyclop // Validation functions naturally have high complexity and length due to sequential checks.
func ValidateConfig(cfg *Config) error {
	var err error

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !isLogLevelCorrect {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	if strings.TrimSpace(cfg.ScratchDir) == "" {
		return ErrEmptyScratchDir
	}

	cfg.ScratchDir = utils.ExpandHome(cfg.ScratchDir)
	cfg.OutputPath = utils.ExpandHome(cfg.OutputPath)

	timeouts := []struct {
		name   string
		value  string
		target *time.Duration
	}{
		{"probe_timeout", cfg.ProbeTimeout, &cfg.ParsedProbeTimeout},
		{"metadata_timeout", cfg.MetadataTimeout, &cfg.ParsedMetadataTimeout},
		{"download_timeout", cfg.DownloadTimeout, &cfg.ParsedDownloadTimeout},
		{"library_timeout", cfg.LibraryTimeout, &cfg.ParsedLibraryTimeout},
		{"transcode_timeout", cfg.TranscodeTimeout, &cfg.ParsedTranscodeTimeout},
		{"request_timeout", cfg.RequestTimeout, &cfg.ParsedRequestTimeout},
		{"po_token_cache_ttl", cfg.POTokenCacheTTL, &cfg.ParsedPOTokenCacheTTL},
		{"stale_artifact_age", cfg.StaleArtifactAge, &cfg.ParsedStaleArtifactAge},
	}

	for _, tt := range timeouts {
		if *tt.target, err = parsePositiveDuration(tt.name, tt.value); err != nil {
			return err
		}
	}

	if cfg.MinHeight <= 0 || cfg.MinHeight > cfg.PreferredHeight {
		return fmt.Errorf("%w: min_height=%d, preferred_height=%d", ErrInvalidHeights, cfg.MinHeight, cfg.PreferredHeight)
	}

	if len(cfg.AudioIdentities) == 0 || len(cfg.VideoIdentities) == 0 {
		return ErrEmptyIdentities
	}

	if cfg.ParsedAudioIdentities, err = media.ParseClientIdentities(cfg.AudioIdentities); err != nil {
		return fmt.Errorf("failed to parse audio identities: %w", err)
	}

	if cfg.ParsedVideoIdentities, err = media.ParseClientIdentities(cfg.VideoIdentities); err != nil {
		return fmt.Errorf("failed to parse video identities: %w", err)
	}

	if len(cfg.Relaxations) == 0 {
		return ErrEmptyRelaxations
	}

	if cfg.ParsedRelaxations, err = media.ParseRelaxations(cfg.Relaxations); err != nil {
		return fmt.Errorf("failed to parse relaxations: %w", err)
	}

	maxRequestBody, err := humanize.ParseBytes(strings.TrimSpace(cfg.MaxRequestBody))
	if err != nil {
		return fmt.Errorf("failed to parse max request body: %w", err)
	}

	cfg.ParsedMaxRequestBody = utils.SafeUint64ToInt64(maxRequestBody)

	if cfg.MaxConcurrentRequests <= 0 {
		return ErrInvalidConcurrentRequests
	}

	if cfg.MaxFilenameLength <= 0 {
		return ErrInvalidFilenameLength
	}

	if strings.TrimSpace(cfg.FilenameTemplate) == "" {
		cfg.FilenameTemplate = DefaultFilenameTemplate
	}

	if _, err = template.New("filename").Parse(cfg.FilenameTemplate); err != nil {
		return fmt.Errorf("failed to parse filename template: %w", err)
	}

	cfg.POToken = strings.TrimSpace(cfg.POToken)
	cfg.POTokenServiceURL = strings.TrimRight(strings.TrimSpace(cfg.POTokenServiceURL), "/")

	return nil
}

func parsePositiveDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	if d <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrNonPositiveTimeout, name)
	}

	return d, nil
}
