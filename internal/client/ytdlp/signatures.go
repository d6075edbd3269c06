package ytdlp

import (
	"strings"
)

// signature maps a substring of extractor output to a failure classification.
type signature struct {
	// needle is matched against lowercased output.
	needle string
	// kind is the resulting failure kind.
	kind FailureKind
	// reason details asset rejections.
	reason string
}

// signatures is ordered: the first matching needle wins, so more specific
// phrases precede the generic ones that contain them.
//
//nolint:gochecknoglobals // Immutable lookup table.
var signatures = []signature{
	{needle: "requested format is not available", kind: FailureFormatUnavailable},
	{needle: "no video formats found", kind: FailureFormatUnavailable},
	{needle: "format not available", kind: FailureFormatUnavailable},
	{needle: "private video", kind: FailureAssetRejected, reason: ReasonPrivate},
	{needle: "video is private", kind: FailureAssetRejected, reason: ReasonPrivate},
	{needle: "sign in to confirm your age", kind: FailureAssetRejected, reason: ReasonAgeRestricted},
	{needle: "age-restricted", kind: FailureAssetRejected, reason: ReasonAgeRestricted},
	{needle: "inappropriate for some users", kind: FailureAssetRejected, reason: ReasonAgeRestricted},
	{needle: "available in your country", kind: FailureAssetRejected, reason: ReasonRegionBlocked},
	{needle: "blocked it in your country", kind: FailureAssetRejected, reason: ReasonRegionBlocked},
	{needle: "geo restriction", kind: FailureAssetRejected, reason: ReasonRegionBlocked},
	{needle: "members-only", kind: FailureAssetRejected, reason: ReasonMembersOnly},
	{needle: "join this channel", kind: FailureAssetRejected, reason: ReasonMembersOnly},
	{needle: "premieres in", kind: FailureAssetRejected, reason: ReasonNotStarted},
	{needle: "live event will begin", kind: FailureAssetRejected, reason: ReasonNotStarted},
	{needle: "removed by the uploader", kind: FailureAssetRejected, reason: ReasonRemovedByOwner},
	{needle: "account associated with this video has been terminated", kind: FailureAssetRejected, reason: ReasonRemovedByOwner},
	{needle: "sign in to confirm you're not a bot", kind: FailureAccessBlocked},
	{needle: "not a bot", kind: FailureAccessBlocked},
	{needle: "http error 429", kind: FailureAccessBlocked},
	{needle: "too many requests", kind: FailureAccessBlocked},
	{needle: "consent.youtube.com", kind: FailureAccessBlocked},
	{needle: "http error 403", kind: FailureClientRejected},
	{needle: "precondition check failed", kind: FailureClientRejected},
	{needle: "failed to extract any player response", kind: FailureClientRejected},
	{needle: "unable to extract initial player response", kind: FailureClientRejected},
	{needle: "the page needs to be reloaded", kind: FailureClientRejected},
	{needle: "video unavailable", kind: FailureAssetRejected, reason: ReasonUnavailable},
}

//nolint:gochecknoglobals // Immutable replacer.
var quoteNormalizer = strings.NewReplacer("’", "'", "‘", "'")

// matchSignature classifies a single line of output.
func matchSignature(line string) (signature, bool) {
	normalized := quoteNormalizer.Replace(strings.ToLower(line))

	for _, s := range signatures {
		if strings.Contains(normalized, s.needle) {
			return s, true
		}
	}

	return signature{}, false
}

// isErrorLine reports whether the line is a fatal diagnostic rather than a warning.
func isErrorLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "ERROR:")
}

// classifyOutput classifies a whole run. Error lines are consulted first;
// warnings are considered only when no error line carries a signature.
func classifyOutput(lines []string) (signature, bool) {
	for _, line := range lines {
		if !isErrorLine(line) {
			continue
		}

		if s, ok := matchSignature(line); ok {
			return s, true
		}
	}

	for _, line := range lines {
		if s, ok := matchSignature(line); ok {
			return s, true
		}
	}

	return signature{}, false
}
