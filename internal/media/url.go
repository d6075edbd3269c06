package media

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/oshokin/tube-grabber/internal/utils"
)

// Static error definitions for URL validation.
var (
	// ErrMissingURL indicates an empty URL.
	ErrMissingURL = errors.New("missing url")
	// ErrInvalidURL indicates a URL that cannot be downloaded from.
	ErrInvalidURL = errors.New("invalid url")
)

//nolint:gochecknoglobals // Query parameters that turn a single video into a playlist or radio context.
var strippedQueryParams = []string{"list", "index", "start_radio", "pp", "playnext"}

//nolint:gochecknoglobals // This is immutable, pre-compiled regex pattern and used as a constant.
var videoIDPattern = regexp.MustCompile(`^/(?:shorts|live|embed)/(?P<id>[A-Za-z0-9_-]{11})`)

// NormalizeURL validates a user-supplied URL and strips playlist and radio parameters.
// Short links and shorts/live/embed paths are rewritten to the canonical watch form.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrMissingURL
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidURL
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	switch {
	case host == "youtu.be":
		id := strings.Trim(u.Path, "/")
		if id == "" {
			return "", ErrInvalidURL
		}

		u = rewriteToWatch(u, id)
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		if id := utils.ExtractNamedGroup(videoIDPattern, "id", u.Path); id != "" {
			u = rewriteToWatch(u, id)
		}
	}

	query := u.Query()
	for _, key := range strippedQueryParams {
		query.Del(key)
	}

	u.RawQuery = query.Encode()
	u.Fragment = ""

	return u.String(), nil
}

// VideoID returns the v= parameter of a normalized watch URL, if any.
func VideoID(normalized string) string {
	u, err := url.Parse(normalized)
	if err != nil {
		return ""
	}

	return u.Query().Get("v")
}

func rewriteToWatch(u *url.URL, id string) *url.URL {
	query := u.Query()
	query.Set("v", id)

	return &url.URL{
		Scheme:   "https",
		Host:     "www.youtube.com",
		Path:     "/watch",
		RawQuery: query.Encode(),
	}
}
