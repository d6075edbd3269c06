package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_utils "github.com/oshokin/tube-grabber/internal/utils/mocks"
)

// TestUserAgentInjector_RoundTrip tests header injection with and without a preset User-Agent.
func TestUserAgentInjector_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		presetAgent   string
		expectedAgent string
		providerCalls int
	}{
		{
			name:          "missing header is injected",
			expectedAgent: "TestAgent/1.0",
			providerCalls: 1,
		},
		{
			name:          "existing header is preserved",
			presetAgent:   "ExistingAgent/1.0",
			expectedAgent: "ExistingAgent/1.0",
			providerCalls: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)

			mockProvider := mock_utils.NewMockUserAgentProvider(ctrl)
			mockProvider.EXPECT().GetUserAgent().Return("TestAgent/1.0").Times(tt.providerCalls)

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.expectedAgent, r.Header.Get("User-Agent"))
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, server.URL, nil)
			require.NoError(t, err)

			if tt.presetAgent != "" {
				req.Header.Set("User-Agent", tt.presetAgent)
			}

			resp, err := NewUserAgentInjector(http.DefaultTransport, mockProvider).RoundTrip(req)
			require.NoError(t, err)

			defer resp.Body.Close() //nolint:errcheck // Test cleanup, error is not critical.

			assert.Equal(t, http.StatusNoContent, resp.StatusCode)
			assert.Equal(t, tt.presetAgent, req.Header.Get("User-Agent"), "caller's request must not be mutated")
		})
	}
}

// TestUserAgentInjector_RoundTrip_ErrorHandling tests that transport errors are propagated.
func TestUserAgentInjector_RoundTrip_ErrorHandling(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)

	mockProvider := mock_utils.NewMockUserAgentProvider(ctrl)
	mockProvider.EXPECT().GetUserAgent().Return("TestAgent/1.0").AnyTimes()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, "http://[::1]:0", nil)
	require.NoError(t, err)

	resp, err := NewUserAgentInjector(http.DefaultTransport, mockProvider).RoundTrip(req) //nolint:bodyclose // Body is empty on error.
	require.Error(t, err)
	assert.Nil(t, resp)
}
