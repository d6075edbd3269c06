package grabber

import (
	"context"
	"errors"
	"time"

	"github.com/oshokin/tube-grabber/internal/client/ytdlp"
	"github.com/oshokin/tube-grabber/internal/logger"
	"github.com/oshokin/tube-grabber/internal/media"
)

// State is a phase of one download request.
type State string

// Request states in the order a successful extractor download walks them.
const (
	StateIdle            State = "idle"
	StateProbingTool     State = "probing_tool"
	StateFetchingCatalog State = "fetching_catalog"
	StateSelecting       State = "selecting"
	StateSpawning        State = "spawning"
	StateRunning         State = "running"
	StateLibraryFallback State = "library_fallback"
	StateCompleted       State = "completed"
	StateFailed          State = "failed"
)

func transition(ctx context.Context, from, to State) State {
	logger.DebugKV(ctx, "State transition", "from", from, "to", to)

	return to
}

// Attempt outcomes.
const (
	OutcomeSucceeded         = "succeeded"
	OutcomeNoSelection       = "no_selection"
	OutcomeCatalogFailed     = "catalog_failed"
	OutcomeFormatUnavailable = "format_unavailable"
	OutcomeClientRejected    = "client_rejected"
	OutcomeAccessBlocked     = "access_blocked"
	OutcomeAssetRejected     = "asset_rejected"
	OutcomeTimeout           = "timeout"
	OutcomeToolFailure       = "tool_failure"
	OutcomeNoOutput          = "no_output"
	OutcomeCanceled          = "canceled"
)

// DownloadAttempt records one cascade step. It is logged and never persisted.
type DownloadAttempt struct {
	// Identity is the emulated client of the step.
	Identity media.ClientIdentity
	// Relaxation is the loosening applied to the policy.
	Relaxation media.Relaxation
	// Policy is the relaxed policy used by the step.
	Policy media.QualityPolicy
	// ResolvedFormatID is the format expression passed to the extractor.
	ResolvedFormatID string
	// Outcome is one of the Outcome* values.
	Outcome string
	// Err is the step failure.
	Err error
	// Duration is the wall time of the step.
	Duration time.Duration
	// startedAt is set when the step starts.
	startedAt time.Time
}

func newAttempt(step CascadeStep, policy media.QualityPolicy) *DownloadAttempt {
	return &DownloadAttempt{
		Identity:   step.Identity,
		Relaxation: step.Relaxation,
		Policy:     policy,
		startedAt:  time.Now(),
	}
}

// resolve stamps the outcome and logs the attempt.
func (a *DownloadAttempt) resolve(ctx context.Context, outcome string, err error) {
	a.Outcome = outcome
	a.Err = err
	a.Duration = time.Since(a.startedAt)

	fields := []any{
		"identity", a.Identity,
		"relaxation", a.Relaxation,
		"format", a.ResolvedFormatID,
		"outcome", a.Outcome,
		"duration", a.Duration.Round(time.Millisecond),
	}

	if err == nil {
		logger.InfoKV(ctx, "Cascade step succeeded", fields...)

		return
	}

	fields = append(fields, "error", err)

	if toolErr, ok := ytdlp.AsToolError(err); ok && toolErr.Kind == ytdlp.FailureGeneric {
		fields = append(fields, "output", toolErr.Output)
	}

	logger.WarnKV(ctx, "Cascade step failed", fields...)
}

// stepFailure is the classified failure of one cascade step.
type stepFailure struct {
	// outcome labels the attempt.
	outcome string
	// phase is the step phase that failed.
	phase State
	// reason is the asset rejection reason, if any.
	reason string
	// skipIdentity drops the remaining steps of the identity.
	skipIdentity bool
	// err is the cause.
	err error
}

// errNoSelection marks a catalog where nothing matched the policy.
var errNoSelection = errors.New("no stream matches the quality policy")

func classifyStep(phase State, err error) *stepFailure {
	failure := &stepFailure{outcome: OutcomeToolFailure, phase: phase, err: err}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		failure.outcome = OutcomeCanceled
	case errors.Is(err, errNoSelection):
		failure.outcome = OutcomeNoSelection
	case errors.Is(err, ErrNoOutput):
		failure.outcome = OutcomeNoOutput
	case errors.Is(err, ytdlp.ErrFormatUnavailable):
		failure.outcome = OutcomeFormatUnavailable
	case errors.Is(err, ytdlp.ErrClientRejected):
		failure.outcome = OutcomeClientRejected
		failure.skipIdentity = true
	case errors.Is(err, ytdlp.ErrAccessBlocked):
		failure.outcome = OutcomeAccessBlocked
		failure.skipIdentity = true
	case errors.Is(err, ytdlp.ErrAssetRejected):
		failure.outcome = OutcomeAssetRejected
		if toolErr, ok := ytdlp.AsToolError(err); ok {
			failure.reason = toolErr.Reason
		}
	case errors.Is(err, ytdlp.ErrTimeout):
		failure.outcome = OutcomeTimeout
	}

	if phase == StateFetchingCatalog && failure.outcome == OutcomeToolFailure {
		failure.outcome = OutcomeCatalogFailed
	}

	return failure
}

// failureSummary folds step failures into the most actionable user-facing error.
type failureSummary struct {
	// catalogFetched is set once any step obtained a catalog.
	catalogFetched bool
	// catalogFailures counts failed catalog fetches.
	catalogFailures int
	// blocked is the last access-blocked failure.
	blocked *stepFailure
	// rejected is the last asset rejection.
	rejected *stepFailure
	// last is the most recent failure.
	last *stepFailure
}

func (s *failureSummary) record(failure *stepFailure) {
	s.last = failure

	if failure.phase == StateFetchingCatalog {
		s.catalogFailures++
	}

	switch failure.outcome {
	case OutcomeAccessBlocked:
		s.blocked = failure
	case OutcomeAssetRejected:
		s.rejected = failure
	}
}

// err returns nil when nothing failed.
func (s *failureSummary) err() error {
	switch {
	case s.last == nil:
		return nil
	case s.blocked != nil:
		return newError(KindAccessBlocked, "access blocked", s.blocked.err)
	case s.rejected != nil:
		e := newError(KindCatalogUnavailable, "video is unavailable", s.rejected.err)
		e.Reason = s.rejected.reason

		return e
	case !s.catalogFetched && s.catalogFailures > 0:
		return newError(KindCatalogUnavailable, "failed to fetch video information", s.last.err)
	case s.last.outcome == OutcomeTimeout:
		return newError(KindProcessTimeout, "download timed out", s.last.err)
	case s.last.outcome == OutcomeFormatUnavailable, s.last.outcome == OutcomeNoSelection:
		return newError(KindFormatUnavailable, "no downloadable format found", s.last.err)
	default:
		return newError(KindToolFailure, "download failed", s.last.err)
	}
}
