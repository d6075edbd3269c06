package youtube

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	yt "github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMapError tests classification of library errors.
func TestMapError(t *testing.T) {
	t.Parallel()

	other := errors.New("connection reset")

	tests := []struct {
		name        string
		err         error
		expectedErr error
	}{
		{name: "private", err: yt.ErrVideoPrivate, expectedErr: ErrAssetRejected},
		{name: "login required", err: fmt.Errorf("wrapped: %w", yt.ErrLoginRequired), expectedErr: ErrAssetRejected},
		{name: "playability", err: &yt.ErrPlayabiltyStatus{Status: "UNPLAYABLE", Reason: "region"}, expectedErr: ErrAssetRejected},
		{name: "bad id", err: yt.ErrInvalidCharactersInVideoID, expectedErr: ErrInvalidID},
		{name: "forbidden", err: yt.ErrUnexpectedStatusCode(http.StatusForbidden), expectedErr: ErrAccessBlocked},
		{name: "too many requests", err: yt.ErrUnexpectedStatusCode(http.StatusTooManyRequests), expectedErr: ErrAccessBlocked},
		{name: "other", err: other, expectedErr: other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mapped := MapError(tt.err)
			require.ErrorIs(t, mapped, tt.expectedErr)
			require.ErrorIs(t, mapped, tt.err, "original error stays in the chain")
		})
	}

	require.NoError(t, MapError(nil))
}

// TestIsStatus tests status code matching through wrapping.
func TestIsStatus(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("copy: %w", yt.ErrUnexpectedStatusCode(http.StatusForbidden))

	assert.True(t, IsStatus(err, http.StatusForbidden))
	assert.False(t, IsStatus(err, http.StatusNotFound))
	assert.False(t, IsStatus(errors.New("plain"), http.StatusForbidden))
}

// TestReason tests rejection reason extraction.
func TestReason(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "private", Reason(MapError(yt.ErrVideoPrivate)))
	assert.Equal(t, "login_required", Reason(yt.ErrLoginRequired))
	assert.Equal(t, "unplayable", Reason(&yt.ErrPlayabiltyStatus{Status: "UNPLAYABLE"}))
	assert.Empty(t, Reason(errors.New("plain")))
}
