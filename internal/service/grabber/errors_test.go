package grabber

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestError tests sentinel matching and messages.
func TestError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := fmt.Errorf("wrapped: %w", newError(KindFormatUnavailable, "no downloadable format found", cause))

	require.ErrorIs(t, err, ErrFormatUnavailable)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, ErrToolFailure)
	assert.Equal(t, KindFormatUnavailable, KindOf(err))
	assert.Equal(t, KindToolFailure, KindOf(cause))

	rejected := &Error{Kind: KindCatalogUnavailable, Message: "video is unavailable", Reason: "private"}
	assert.Equal(t, "video is unavailable (private)", rejected.Error())

	blocked := newError(KindAccessBlocked, "access blocked", nil)
	assert.Contains(t, blocked.Error(), "po_token")
}

// TestMostActionable tests error ranking.
func TestMostActionable(t *testing.T) {
	t.Parallel()

	var (
		tool     = newError(KindToolFailure, "download failed", nil)
		timeout  = newError(KindProcessTimeout, "download timed out", nil)
		format   = newError(KindFormatUnavailable, "no downloadable format found", nil)
		blocked  = newError(KindAccessBlocked, "access blocked", nil)
		rejected = &Error{Kind: KindCatalogUnavailable, Message: "video is unavailable", Reason: "private"}
	)

	assert.Equal(t, blocked, mostActionable(tool, blocked, rejected))
	assert.Equal(t, rejected, mostActionable(format, rejected))
	assert.Equal(t, format, mostActionable(timeout, format))
	assert.Equal(t, tool, mostActionable(nil, tool))
	assert.Equal(t, timeout, mostActionable(timeout, tool))
	assert.NoError(t, mostActionable(nil, nil))
}
