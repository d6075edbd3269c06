package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/oshokin/tube-grabber/internal/client/ffmpeg"
	"github.com/oshokin/tube-grabber/internal/client/potoken"
	"github.com/oshokin/tube-grabber/internal/client/youtube"
	"github.com/oshokin/tube-grabber/internal/client/ytdlp"
	"github.com/oshokin/tube-grabber/internal/config"
	"github.com/oshokin/tube-grabber/internal/service/grabber"
	transport_http "github.com/oshokin/tube-grabber/internal/transport/http"
	"github.com/oshokin/tube-grabber/internal/utils"
	"github.com/oshokin/tube-grabber/internal/version"
)

// components are the wired parts shared by every command.
type components struct {
	// service is the grabber service.
	service grabber.Service
	// registry holds the process and grabber metrics.
	registry *prometheus.Registry
}

// newComponents wires the clients, the scratch directory and the grabber service.
func newComponents(cfg *config.Config, progress grabber.ProgressFactory) (*components, error) {
	scratch, err := grabber.NewScratch(utils.ExpandHome(cfg.ScratchDir))
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics, err := grabber.NewMetrics(grabber.DefaultMetricsNamespace, registry)
	if err != nil {
		return nil, err
	}

	filenames, err := grabber.NewFilenameBuilder(cfg.FilenameTemplate, cfg.MaxFilenameLength)
	if err != nil {
		return nil, fmt.Errorf("failed to parse filename template: %w", err)
	}

	// Stream downloads are bounded by the request context, API calls by a client timeout.
	streamClient := transport_http.NewClient(transport_http.ClientOptions{UserAgents: cfg.UserAgents})
	apiClient := transport_http.NewClient(transport_http.ClientOptions{
		Timeout:    transport_http.DefaultTimeout,
		UserAgents: []string{version.Product()},
	})

	transcoder := ffmpeg.NewClient(ffmpeg.Options{
		Path:         cfg.TranscoderPath,
		AudioBitrate: cfg.AudioBitrate,
		Timeout:      cfg.ParsedTranscodeTimeout,
	})

	var tagger grabber.Tagger
	if cfg.WriteID3Tags {
		tagger = grabber.NewTagger(apiClient)
	}

	service := grabber.NewService(grabber.Dependencies{
		Config:  cfg,
		Locator: ytdlp.NewLocator(cfg.ExtractorPaths, cfg.ExtractorName, cfg.ParsedProbeTimeout),
		Extractor: ytdlp.NewClient(ytdlp.Options{
			MetadataTimeout: cfg.ParsedMetadataTimeout,
			DownloadTimeout: cfg.ParsedDownloadTimeout,
		}),
		Library:    youtube.NewClient(youtube.Options{HTTPClient: streamClient}),
		Transcoder: transcoder,
		Tokens: potoken.NewProvider(potoken.Options{
			StaticToken: cfg.POToken,
			ServiceURL:  cfg.POTokenServiceURL,
			CacheTTL:    cfg.ParsedPOTokenCacheTTL,
			HTTPClient:  apiClient,
		}),
		Scratch:  scratch,
		Packager: grabber.NewPackager(transcoder, tagger, filenames, metrics),
		Metrics:  metrics,
		Progress: progress,
	})

	return &components{service: service, registry: registry}, nil
}
