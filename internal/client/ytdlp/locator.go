package ytdlp

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/oshokin/tube-grabber/internal/logger"
	"github.com/oshokin/tube-grabber/internal/utils"
)

//go:generate $MOCKGEN -source=locator.go -destination=mocks/locator_mock.go

// Tool is a located, working extractor binary.
type Tool struct {
	// Path is the absolute or PATH-resolved executable.
	Path string
	// Version is the first line of its --version output.
	Version string
}

// Locator finds a working extractor binary.
type Locator interface {
	// Locate returns the first candidate that answers a version query, or ErrToolNotFound.
	Locate(ctx context.Context) (*Tool, error)
}

// LocatorImpl probes configured paths, then PATH.
type LocatorImpl struct {
	// candidates are probed in order.
	candidates []string
	// name is looked up on PATH after the candidates.
	name string
	// probeTimeout bounds each version query.
	probeTimeout time.Duration
	// lookPath resolves name on PATH.
	lookPath func(string) (string, error)
}

// NewLocator creates a locator over the given candidates and PATH name.
func NewLocator(candidates []string, name string, probeTimeout time.Duration) Locator {
	return &LocatorImpl{
		candidates:   candidates,
		name:         name,
		probeTimeout: probeTimeout,
		lookPath:     exec.LookPath,
	}
}

// Locate returns the first candidate that answers a version query.
func (l *LocatorImpl) Locate(ctx context.Context) (*Tool, error) {
	for _, candidate := range l.candidates {
		path := utils.ExpandHome(candidate)

		if exists, err := utils.IsFileExist(path); err != nil || !exists {
			continue
		}

		if tool, ok := l.probe(ctx, path); ok {
			return tool, nil
		}
	}

	if l.name != "" {
		if path, err := l.lookPath(l.name); err == nil {
			if tool, ok := l.probe(ctx, path); ok {
				return tool, nil
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return nil, ErrToolNotFound
}

func (l *LocatorImpl) probe(ctx context.Context, path string) (*Tool, bool) {
	probeCtx, cancel := context.WithTimeout(ctx, l.probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, path, "--version") //nolint:gosec // Candidates come from configuration.
	cmd.WaitDelay = processWaitDelay

	output, err := cmd.Output()
	if err != nil {
		logger.DebugKV(ctx, "Extractor probe failed", "path", path, "error", err)

		return nil, false
	}

	version, _, _ := strings.Cut(strings.TrimSpace(string(output)), "\n")

	logger.DebugKV(ctx, "Extractor located", "path", path, "version", version)

	return &Tool{Path: path, Version: version}, true
}
