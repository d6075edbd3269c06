package ytdlp

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/tube-grabber/internal/utils"
)

//nolint:gochecknoglobals // These are immutable, pre-compiled regex patterns and used as constants.
var (
	progressPattern    = regexp.MustCompile(`^\[download\]\s+(?P<percent>\d+(?:\.\d+)?)%`)
	destinationPattern = regexp.MustCompile(`^\[download\] Destination: (?P<path>.+)$`)
	alreadyPattern     = regexp.MustCompile(`^\[download\] (?P<path>.+) has already been downloaded$`)
	mergerPattern      = regexp.MustCompile(`^\[Merger\] Merging formats into "(?P<path>.+)"$`)
)

// Download fetches the selected format, streaming progress to req.OnProgress.
// The process is killed when the download timeout expires or a fatal error line appears.
func (c *ClientImpl) Download(ctx context.Context, req *DownloadRequest) (*DownloadResult, error) {
	var (
		mu           sync.Mutex
		destinations []string
		startedAt    = time.Now()
	)

	onLine := func(line string) {
		if percent, ok := ParseProgress(line); ok {
			if req.OnProgress != nil {
				req.OnProgress(Progress{Percent: percent, Line: line})
			}

			return
		}

		if path := parseDestination(line); path != "" {
			mu.Lock()
			destinations = append(destinations, path)
			mu.Unlock()
		}
	}

	_, err := run(ctx, invocation{
		path:         req.ToolPath,
		args:         downloadArgs(req),
		timeout:      c.downloadTimeout,
		abortOnFatal: true,
		onLine:       onLine,
	})
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()

	return &DownloadResult{
		Destinations: append([]string(nil), destinations...),
		Duration:     time.Since(startedAt),
	}, nil
}

// ParseProgress extracts the percentage from a progress line.
func ParseProgress(line string) (float64, bool) {
	value := utils.ExtractNamedGroup(progressPattern, "percent", strings.TrimSpace(line))
	if value == "" {
		return 0, false
	}

	percent, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}

	return percent, true
}

func parseDestination(line string) string {
	line = strings.TrimSpace(line)

	for _, pattern := range []*regexp.Regexp{mergerPattern, destinationPattern, alreadyPattern} {
		if path := utils.ExtractNamedGroup(pattern, "path", line); path != "" {
			return path
		}
	}

	return ""
}
