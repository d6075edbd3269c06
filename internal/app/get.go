package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/tube-grabber/internal/config"
	"github.com/oshokin/tube-grabber/internal/constants"
	"github.com/oshokin/tube-grabber/internal/logger"
	"github.com/oshokin/tube-grabber/internal/media"
	"github.com/oshokin/tube-grabber/internal/service/grabber"
	"github.com/oshokin/tube-grabber/internal/utils"
)

// ExecuteGetCommand downloads one URL and saves the file into the configured output path.
func ExecuteGetCommand(ctx context.Context, cfg *config.Config, req *grabber.DownloadRequest) error {
	c, err := newComponents(cfg, grabber.BarProgress(os.Stderr))
	if err != nil {
		return err
	}

	pkg, err := c.service.Download(ctx, req)
	if err != nil {
		return err
	}

	path, err := savePackage(utils.ExpandHome(cfg.OutputPath), pkg)
	if err != nil {
		return err
	}

	logger.Infof(ctx, "Saved %s (%s)", path, humanize.Bytes(uint64(len(pkg.Data))))

	for _, warning := range pkg.Warnings {
		logger.Warn(ctx, warning)
	}

	if format, _ := media.ParseOutputFormat(req.Format); !strings.EqualFold(filepath.Ext(path), format.Extension()) {
		logger.Warnf(ctx, "The file was kept as %s because it could not be converted", filepath.Ext(path))
	}

	return nil
}

// savePackage writes pkg into dir, creating dir when needed, and returns the file path.
func savePackage(dir string, pkg *grabber.Package) (string, error) {
	if err := os.MkdirAll(dir, constants.DefaultFolderPermissions); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, pkg.Filename)

	if err := os.WriteFile(path, pkg.Data, constants.DefaultFilePermissions); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}
