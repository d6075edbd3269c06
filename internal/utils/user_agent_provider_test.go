package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRotatingUserAgentProvider_GetUserAgent tests round-robin order and the fallback.
func TestRotatingUserAgentProvider_GetUserAgent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		fallback   string
		userAgents []string
		expected   []string
	}{
		{
			name:     "no pool uses the fallback",
			fallback: "Mozilla/5.0 (X11; Linux x86_64)",
			expected: []string{"Mozilla/5.0 (X11; Linux x86_64)", "Mozilla/5.0 (X11; Linux x86_64)"},
		},
		{
			name:       "blank entries are skipped",
			fallback:   "fallback",
			userAgents: []string{"", "", ""},
			expected:   []string{"fallback"},
		},
		{
			name:       "single entry repeats",
			fallback:   "fallback",
			userAgents: []string{"Agent1"},
			expected:   []string{"Agent1", "Agent1"},
		},
		{
			name:       "pool rotates in order",
			fallback:   "fallback",
			userAgents: []string{"Agent1", "", "Agent2", "Agent3"},
			expected:   []string{"Agent1", "Agent2", "Agent3", "Agent1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			provider := NewRotatingUserAgentProvider(tt.fallback, tt.userAgents...)

			for _, expected := range tt.expected {
				assert.Equal(t, expected, provider.GetUserAgent())
			}
		})
	}
}

// TestRotatingUserAgentProvider_Concurrent tests that concurrent callers share the rotation evenly.
func TestRotatingUserAgentProvider_Concurrent(t *testing.T) {
	t.Parallel()

	const callers = 100

	provider := NewRotatingUserAgentProvider("fallback", "Agent1", "Agent2")

	var (
		mu     sync.Mutex
		counts = make(map[string]int)
		wg     sync.WaitGroup
	)

	for range callers {
		wg.Go(func() {
			userAgent := provider.GetUserAgent()

			mu.Lock()
			counts[userAgent]++
			mu.Unlock()
		})
	}

	wg.Wait()

	assert.Equal(t, map[string]int{"Agent1": callers / 2, "Agent2": callers / 2}, counts)
}
