package grabber

import (
	"context"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/oshokin/tube-grabber/internal/logger"
)

// ProgressReporter receives download progress of one cascade step.
type ProgressReporter interface {
	// Update reports the completion percentage of the current file.
	Update(percent float64)
	// Finish closes the reporter.
	Finish()
}

// ProgressFactory creates a reporter for one cascade step.
type ProgressFactory func(ctx context.Context, label string) ProgressReporter

// logProgressStep is the percentage between two logged progress lines.
const logProgressStep = 10

// LogProgress reports progress as debug log lines, at most one per step percent.
func LogProgress() ProgressFactory {
	return func(ctx context.Context, label string) ProgressReporter {
		return &logReporter{ctx: ctx, label: label, next: logProgressStep}
	}
}

type logReporter struct {
	ctx   context.Context //nolint:containedctx // Carries request log fields for callbacks.
	label string
	mu    sync.Mutex
	next  float64
}

func (r *logReporter) Update(percent float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// A new file (the audio half of a merge) restarts from zero.
	if percent+logProgressStep < r.next {
		r.next = logProgressStep
	}

	if percent < r.next {
		return
	}

	logger.DebugKV(r.ctx, "Download progress", "step", r.label, "percent", percent)

	r.next = float64(int(percent/logProgressStep)+1) * logProgressStep
}

func (r *logReporter) Finish() {}

// BarProgress draws a terminal progress bar on w.
func BarProgress(w io.Writer) ProgressFactory {
	return func(_ context.Context, label string) ProgressReporter {
		bar := progressbar.NewOptions(100, //nolint:mnd // Percent scale.
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(label),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionClearOnFinish(),
		)

		return &barReporter{bar: bar}
	}
}

type barReporter struct {
	bar *progressbar.ProgressBar
}

func (r *barReporter) Update(percent float64) {
	_ = r.bar.Set(int(percent)) //nolint:errcheck // Rendering errors are irrelevant.
}

func (r *barReporter) Finish() {
	_ = r.bar.Finish() //nolint:errcheck // Rendering errors are irrelevant.
}

type nopReporter struct{}

func (nopReporter) Update(float64) {}

func (nopReporter) Finish() {}
