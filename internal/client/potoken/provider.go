package potoken

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/oshokin/tube-grabber/internal/logger"
)

//go:generate $MOCKGEN -source=provider.go -destination=mocks/provider_mock.go

// Provider returns a token for a content binding (the video id).
// An empty token with a nil error means no token is available.
type Provider interface {
	Token(ctx context.Context, videoID string) (string, error)
}

// Static error definitions for better error handling.
var (
	// ErrUnexpectedStatus indicates a non-2xx answer from the token service.
	ErrUnexpectedStatus = errors.New("unexpected token service status")
	// ErrEmptyToken indicates a successful answer without a token.
	ErrEmptyToken = errors.New("token service returned no token")
)

const (
	// getTokenPath is the token service endpoint.
	getTokenPath = "/get_pot"
	// cacheSize bounds the number of cached bindings.
	cacheSize = 256
	// maxResponseBytes caps the token service response.
	maxResponseBytes = 64 * 1024
)

// Options configures NewProvider.
type Options struct {
	// StaticToken is returned for every binding when set.
	StaticToken string
	// ServiceURL is the base URL of the token service.
	ServiceURL string
	// CacheTTL is how long a service token is reused.
	CacheTTL time.Duration
	// HTTPClient performs service requests.
	HTTPClient *http.Client
}

// NewProvider builds the provider chain: the static token wins, otherwise the
// service is asked, otherwise no token is produced.
func NewProvider(opts Options) Provider {
	switch {
	case opts.StaticToken != "":
		return &StaticProvider{token: opts.StaticToken}
	case opts.ServiceURL != "":
		return NewServiceProvider(opts.ServiceURL, opts.HTTPClient, opts.CacheTTL)
	default:
		return &StaticProvider{}
	}
}

// StaticProvider returns a fixed token.
type StaticProvider struct {
	// token is returned verbatim.
	token string
}

// Token returns the configured token.
func (p *StaticProvider) Token(context.Context, string) (string, error) {
	return p.token, nil
}

// ServiceProvider asks a token provider service and caches the answers.
type ServiceProvider struct {
	// baseURL is the service root without a trailing slash.
	baseURL string
	// httpClient performs requests.
	httpClient *http.Client
	// cache maps a binding to its token.
	cache *expirable.LRU[string, string]
}

type tokenRequest struct {
	ContentBinding string `json:"content_binding,omitempty"`
}

type tokenResponse struct {
	POToken        string `json:"poToken"`
	ContentBinding string `json:"contentBinding"`
}

// NewServiceProvider creates a provider backed by a token service.
func NewServiceProvider(baseURL string, httpClient *http.Client, ttl time.Duration) *ServiceProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &ServiceProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		cache:      expirable.NewLRU[string, string](cacheSize, nil, ttl),
	}
}

// Token returns a cached token or asks the service for a new one.
func (p *ServiceProvider) Token(ctx context.Context, videoID string) (string, error) {
	if token, ok := p.cache.Get(videoID); ok {
		return token, nil
	}

	token, err := p.fetch(ctx, videoID)
	if err != nil {
		return "", err
	}

	p.cache.Add(videoID, token)

	logger.DebugKV(ctx, "Received proof-of-origin token", "video_id", videoID, "length", len(token))

	return token, nil
}

func (p *ServiceProvider) fetch(ctx context.Context, videoID string) (string, error) {
	body, err := json.Marshal(tokenRequest{ContentBinding: videoID})
	if err != nil {
		return "", fmt.Errorf("failed to encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+getTokenPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request token: %w", err)
	}

	defer resp.Body.Close() //nolint:errcheck // Error on close is not critical here.

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var decoded tokenResponse
	if err = json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	if decoded.POToken == "" {
		return "", ErrEmptyToken
	}

	return decoded.POToken, nil
}
