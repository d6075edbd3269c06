package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/oshokin/tube-grabber/internal/config"
	"github.com/oshokin/tube-grabber/internal/logger"
	"github.com/oshokin/tube-grabber/internal/service/grabber"
	"github.com/oshokin/tube-grabber/internal/transport/server"
)

// ExecuteServeCommand sweeps stale scratch files and serves the HTTP API until ctx is canceled.
func ExecuteServeCommand(ctx context.Context, cfg *config.Config) error {
	c, err := newComponents(cfg, grabber.LogProgress())
	if err != nil {
		return err
	}

	removed, err := c.service.Sweep(ctx)
	if err != nil {
		logger.Warnf(ctx, "Failed to sweep the scratch directory: %v", err)
	} else if removed > 0 {
		logger.Infof(ctx, "Removed %d stale scratch files", removed)
	}

	logToolStatus(ctx, c.service.Status(ctx))

	if !logger.IsDebugLevel() {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(server.Options{
		Config:   cfg,
		Service:  c.service,
		Gatherer: c.registry,
	})

	return srv.Run(ctx)
}

func logToolStatus(ctx context.Context, status *grabber.ToolStatus) {
	if status.ExtractorAvailable {
		logger.InfoKV(ctx, "Extractor found", "path", status.ExtractorPath, "version", status.ExtractorVersion)
	} else {
		logger.Warn(ctx, "Extractor not found, every request will use the library path")
	}

	if status.TranscoderAvailable {
		logger.InfoKV(ctx, "Transcoder found", "path", status.TranscoderPath)
	} else {
		logger.Warn(ctx, "Transcoder not found, files are returned in their original container")
	}
}
