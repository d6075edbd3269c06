package http

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLogTransport_Truncate tests truncation and secret redaction of dumps.
func TestLogTransport_Truncate(t *testing.T) {
	t.Parallel()

	transport, ok := NewLogTransport(http.DefaultTransport, 0).(*LogTransport)
	require.True(t, ok)
	assert.Equal(t, uint64(DefaultMaxLogLength), transport.maxLogLength)

	redacted := transport.truncate([]byte(`{"poToken":"secret-value","contentBinding":"abc"}`))
	assert.NotContains(t, redacted, "secret-value")
	assert.Contains(t, redacted, `"poToken":"[redacted]"`)
	assert.Contains(t, redacted, "abc")

	short, ok := NewLogTransport(http.DefaultTransport, 4).(*LogTransport)
	require.True(t, ok)
	assert.Equal(t, "abcd... [truncated]", short.truncate([]byte("abcdefgh")))
}

// TestLogTransport_RoundTrip tests that requests pass through unchanged.
func TestLogTransport_RoundTrip(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := NewLogTransport(http.DefaultTransport, 0).RoundTrip(req)
	require.NoError(t, err)

	defer resp.Body.Close() //nolint:errcheck // Test cleanup, error is not critical.

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = NewLogTransport(http.DefaultTransport, 0).RoundTrip(nil) //nolint:bodyclose // No response on error.
	require.ErrorIs(t, err, ErrNilRequest)
}

// TestNewClient tests that the client chain sets the configured User-Agent.
func TestNewClient(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		seen []string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("User-Agent"))
		mu.Unlock()

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{Timeout: DefaultTimeout, UserAgents: []string{"agent-a", "agent-b"}})

	for range 3 {
		req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, server.URL, nil)
		require.NoError(t, err)

		resp, err := client.Do(req)
		require.NoError(t, err)

		_ = resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, []string{"agent-a", "agent-b", "agent-a"}, seen)
}
