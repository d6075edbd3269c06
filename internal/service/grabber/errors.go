package grabber

import (
	"errors"
	"strings"
)

// ErrorKind classifies user-visible failures.
type ErrorKind int

const (
	// KindInvalidInput is a missing or malformed request; the client can fix it.
	KindInvalidInput ErrorKind = iota + 1
	// KindCatalogUnavailable means no identity could fetch a catalog.
	KindCatalogUnavailable
	// KindFormatUnavailable means no step could deliver a stream for the policy.
	KindFormatUnavailable
	// KindToolFailure is any other extractor or library failure.
	KindToolFailure
	// KindProcessTimeout means the last failures were timeouts.
	KindProcessTimeout
	// KindTranscodeFailure is a failed transcode; it is recovered and never surfaced.
	KindTranscodeFailure
	// KindAccessBlocked means the platform refused this server.
	KindAccessBlocked
)

// String returns the name used in logs and metrics.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindCatalogUnavailable:
		return "catalog_unavailable"
	case KindFormatUnavailable:
		return "format_unavailable"
	case KindToolFailure:
		return "tool_failure"
	case KindProcessTimeout:
		return "process_timeout"
	case KindTranscodeFailure:
		return "transcode_failure"
	case KindAccessBlocked:
		return "access_blocked"
	default:
		return "unknown"
	}
}

// Static error definitions for better error handling.
// Each one matches every *Error of the corresponding kind.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrFormatUnavailable  = errors.New("format unavailable")
	ErrToolFailure        = errors.New("download failed")
	ErrProcessTimeout     = errors.New("download timed out")
	ErrTranscodeFailure   = errors.New("transcode failed")
	ErrAccessBlocked      = errors.New("access blocked")
)

// accessBlockedGuidance is appended to AccessBlocked messages.
const accessBlockedGuidance = "the platform is refusing requests from this server; " +
	"configure po_token or po_token_service_url, or retry later"

// Error is a classified failure returned by Service.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind
	// Message is the single user-facing string.
	Message string
	// Reason is the asset's own rejection reason when detectable, e.g. "private".
	Reason string
	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Message)

	if e.Reason != "" {
		b.WriteString(" (")
		b.WriteString(e.Reason)
		b.WriteString(")")
	}

	if e.Kind == KindAccessBlocked {
		b.WriteString(": ")
		b.WriteString(accessBlockedGuidance)
	}

	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	return kindSentinel(e.Kind) == target //nolint:errorlint // Sentinel identity comparison is intended here.
}

func kindSentinel(kind ErrorKind) error {
	switch kind {
	case KindInvalidInput:
		return ErrInvalidInput
	case KindCatalogUnavailable:
		return ErrCatalogUnavailable
	case KindFormatUnavailable:
		return ErrFormatUnavailable
	case KindToolFailure:
		return ErrToolFailure
	case KindProcessTimeout:
		return ErrProcessTimeout
	case KindTranscodeFailure:
		return ErrTranscodeFailure
	case KindAccessBlocked:
		return ErrAccessBlocked
	default:
		return nil
	}
}

func newError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of a classified error, or KindToolFailure for anything else.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindToolFailure
}
