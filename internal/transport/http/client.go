package http

import (
	"net/http"
	"time"

	"github.com/oshokin/tube-grabber/internal/utils"
)

// ClientOptions configures NewClient.
type ClientOptions struct {
	// Timeout bounds a whole request including reading the body. Zero disables it.
	Timeout time.Duration
	// UserAgents is the rotation pool; DefaultUserAgent is used when it is empty.
	UserAgents []string
	// MaxLogLength limits debug dumps.
	MaxLogLength uint64
	// Base is the innermost transport, http.DefaultTransport when nil.
	Base http.RoundTripper
}

// NewClient builds an *http.Client with User-Agent injection and debug logging.
func NewClient(opts ClientOptions) *http.Client {
	base := opts.Base
	if base == nil {
		base = http.DefaultTransport
	}

	return &http.Client{
		Timeout: opts.Timeout,
		Transport: NewUserAgentInjector(
			NewLogTransport(base, opts.MaxLogLength),
			utils.NewRotatingUserAgentProvider(DefaultUserAgent, opts.UserAgents...),
		),
	}
}
