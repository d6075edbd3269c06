package youtube

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	yt "github.com/kkdai/youtube/v2"
)

// Static error definitions for better error handling.
var (
	// ErrAccessBlocked indicates an HTTP 403 or a bot check from the platform.
	ErrAccessBlocked = errors.New("access blocked by the platform")
	// ErrAssetRejected indicates a private, login-only or otherwise unplayable asset.
	ErrAssetRejected = errors.New("asset is not playable")
	// ErrInvalidID indicates a URL without a usable video id.
	ErrInvalidID = errors.New("invalid video id")
	// ErrFormatNotFound indicates a format id absent from the asset.
	ErrFormatNotFound = errors.New("format not found")
	// ErrEmptyCatalog indicates an asset without any usable stream.
	ErrEmptyCatalog = errors.New("asset has no usable streams")
	// ErrNoAsset indicates an Asset that did not come from GetAsset.
	ErrNoAsset = errors.New("asset was not fetched by this client")
)

// MapError classifies a library error onto the package sentinels.
// The original error stays in the chain.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, yt.ErrLoginRequired),
		errors.Is(err, yt.ErrVideoPrivate),
		errors.Is(err, yt.ErrNotPlayableInEmbed):
		return fmt.Errorf("%w: %w", ErrAssetRejected, err)
	case errors.Is(err, yt.ErrInvalidCharactersInVideoID),
		errors.Is(err, yt.ErrVideoIDMinLength),
		errors.Is(err, yt.ErrInvalidPlaylist):
		return fmt.Errorf("%w: %w", ErrInvalidID, err)
	}

	var statusErr *yt.ErrPlayabiltyStatus
	if errors.As(err, &statusErr) {
		return fmt.Errorf("%w: %w", ErrAssetRejected, err)
	}

	if IsStatus(err, http.StatusForbidden) || IsStatus(err, http.StatusTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrAccessBlocked, err)
	}

	return err
}

// IsStatus reports whether err carries the given unexpected HTTP status.
func IsStatus(err error, code int) bool {
	var statusErr yt.ErrUnexpectedStatusCode
	if errors.As(err, &statusErr) {
		return int(statusErr) == code
	}

	return false
}

// Reason returns a short rejection reason for asset errors, empty when unknown.
func Reason(err error) string {
	switch {
	case errors.Is(err, yt.ErrVideoPrivate):
		return "private"
	case errors.Is(err, yt.ErrLoginRequired):
		return "login_required"
	case errors.Is(err, yt.ErrNotPlayableInEmbed):
		return "not_embeddable"
	}

	var statusErr *yt.ErrPlayabiltyStatus
	if errors.As(err, &statusErr) {
		return strings.ToLower(statusErr.Status)
	}

	return ""
}
