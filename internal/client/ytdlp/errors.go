package ytdlp

import (
	"errors"
	"fmt"
	"strings"
)

// FailureKind classifies why an extractor run failed.
type FailureKind int

const (
	// FailureGeneric is any failure without a known signature.
	FailureGeneric FailureKind = iota
	// FailureFormatUnavailable means the chosen format cannot be fetched with this identity.
	FailureFormatUnavailable
	// FailureClientRejected means the platform refused the emulated client.
	FailureClientRejected
	// FailureAccessBlocked means the platform is throttling or demanding verification.
	FailureAccessBlocked
	// FailureAssetRejected means the asset itself is private, age-gated or region-locked.
	FailureAssetRejected
	// FailureTimeout means the run exceeded its deadline and was killed.
	FailureTimeout
	// FailureSpawn means the process could not be started.
	FailureSpawn
	// FailureMalformedOutput means the process succeeded but its output was unusable.
	FailureMalformedOutput
)

// String returns the name used in logs and metrics.
func (k FailureKind) String() string {
	switch k {
	case FailureFormatUnavailable:
		return "format_unavailable"
	case FailureClientRejected:
		return "client_rejected"
	case FailureAccessBlocked:
		return "access_blocked"
	case FailureAssetRejected:
		return "asset_rejected"
	case FailureTimeout:
		return "timeout"
	case FailureSpawn:
		return "spawn_failed"
	case FailureMalformedOutput:
		return "malformed_output"
	case FailureGeneric:
		fallthrough
	default:
		return "tool_failure"
	}
}

// Reasons attached to FailureAssetRejected.
const (
	ReasonPrivate        = "private"
	ReasonAgeRestricted  = "age_restricted"
	ReasonRegionBlocked  = "region_blocked"
	ReasonMembersOnly    = "members_only"
	ReasonNotStarted     = "not_started"
	ReasonUnavailable    = "unavailable"
	ReasonRemovedByOwner = "removed"
)

// Static error definitions for better error handling.
var (
	// ErrToolNotFound indicates that no working extractor binary was found.
	ErrToolNotFound = errors.New("extractor not found")
	// ErrToolFailed is the sentinel every ToolError matches.
	ErrToolFailed = errors.New("extractor failed")
	// ErrFormatUnavailable matches ToolErrors of kind FailureFormatUnavailable.
	ErrFormatUnavailable = errors.New("requested format is not available")
	// ErrClientRejected matches ToolErrors of kind FailureClientRejected.
	ErrClientRejected = errors.New("client identity rejected")
	// ErrAccessBlocked matches ToolErrors of kind FailureAccessBlocked.
	ErrAccessBlocked = errors.New("access blocked by the platform")
	// ErrAssetRejected matches ToolErrors of kind FailureAssetRejected.
	ErrAssetRejected = errors.New("asset is not downloadable")
	// ErrTimeout matches ToolErrors of kind FailureTimeout.
	ErrTimeout = errors.New("extractor timed out")
	// ErrEmptyCatalog indicates a catalog without any usable stream.
	ErrEmptyCatalog = errors.New("catalog has no usable streams")
	// ErrPlaylistURL indicates a URL that resolved to a playlist instead of one asset.
	ErrPlaylistURL = errors.New("url resolves to a playlist")
)

// ToolError describes a failed extractor run.
type ToolError struct {
	// Kind classifies the failure.
	Kind FailureKind
	// Reason details FailureAssetRejected.
	Reason string
	// ExitCode is the process exit code, -1 when it did not exit normally.
	ExitCode int
	// Output is the tail of the combined process output.
	Output string
	// Err is the underlying error, if any.
	Err error
}

// Error implements error.
func (e *ToolError) Error() string {
	var b strings.Builder

	b.WriteString("extractor failed: ")
	b.WriteString(e.Kind.String())

	if e.Reason != "" {
		b.WriteString(" (")
		b.WriteString(e.Reason)
		b.WriteString(")")
	}

	if e.ExitCode > 0 {
		fmt.Fprintf(&b, ", exit code %d", e.ExitCode)
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *ToolError) Unwrap() error {
	return e.Err
}

// Is maps the failure kind onto the package sentinels.
func (e *ToolError) Is(target error) bool {
	switch target { //nolint:errorlint // Sentinel identity comparison is intended here.
	case ErrToolFailed:
		return true
	case ErrFormatUnavailable:
		return e.Kind == FailureFormatUnavailable
	case ErrClientRejected:
		return e.Kind == FailureClientRejected
	case ErrAccessBlocked:
		return e.Kind == FailureAccessBlocked
	case ErrAssetRejected:
		return e.Kind == FailureAssetRejected
	case ErrTimeout:
		return e.Kind == FailureTimeout
	default:
		return false
	}
}

// AsToolError extracts a ToolError from err.
func AsToolError(err error) (*ToolError, bool) {
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return toolErr, true
	}

	return nil, false
}
