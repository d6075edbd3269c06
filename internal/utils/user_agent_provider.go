package utils

import "sync/atomic"

//go:generate $MOCKGEN -source=user_agent_provider.go -destination=mocks/user_agent_provider_mock.go

// UserAgentProvider supplies the User-Agent header for outgoing requests.
type UserAgentProvider interface {
	// GetUserAgent returns a User-Agent string.
	GetUserAgent() string
}

// RotatingUserAgentProvider hands out browser User-Agent strings in round-robin order.
// Media hosts throttle long runs of identical fingerprints, so stream requests rotate.
type RotatingUserAgentProvider struct {
	// userAgents is the rotation pool; it is never empty.
	userAgents []string
	// next is the index of the next string to hand out.
	next atomic.Uint64
}

// NewRotatingUserAgentProvider returns a provider cycling through userAgents.
// Blank entries are skipped; fallback is used when nothing is left.
func NewRotatingUserAgentProvider(fallback string, userAgents ...string) UserAgentProvider {
	pool := make([]string, 0, len(userAgents))

	for _, userAgent := range userAgents {
		if userAgent != "" {
			pool = append(pool, userAgent)
		}
	}

	if len(pool) == 0 {
		pool = append(pool, fallback)
	}

	return &RotatingUserAgentProvider{userAgents: pool}
}

// GetUserAgent returns the next User-Agent string of the pool.
func (p *RotatingUserAgentProvider) GetUserAgent() string {
	index := p.next.Add(1) - 1

	return p.userAgents[index%uint64(len(p.userAgents))]
}
