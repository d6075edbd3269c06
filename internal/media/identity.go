package media

import (
	"fmt"
	"strings"
)

// ClientIdentity is an emulated client presentation context.
// Each identity may expose a different subset of streams.
type ClientIdentity string

// Known client identities. The values are the extractor's player_client names.
const (
	IdentityWeb         ClientIdentity = "web"
	IdentityMobileWeb   ClientIdentity = "mweb"
	IdentityAndroid     ClientIdentity = "android"
	IdentityIOS         ClientIdentity = "ios"
	IdentityTV          ClientIdentity = "tv"
	IdentityWebEmbedded ClientIdentity = "web_embedded"
)

//nolint:gochecknoglobals // Immutable lookup table.
var knownIdentities = map[ClientIdentity]struct{}{
	IdentityWeb:         {},
	IdentityMobileWeb:   {},
	IdentityAndroid:     {},
	IdentityIOS:         {},
	IdentityTV:          {},
	IdentityWebEmbedded: {},
}

// String returns the player_client name.
func (i ClientIdentity) String() string {
	return string(i)
}

// ParseClientIdentity validates an identity name.
func ParseClientIdentity(value string) (ClientIdentity, error) {
	identity := ClientIdentity(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := knownIdentities[identity]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownIdentity, value)
	}

	return identity, nil
}

// ParseClientIdentities validates a list of identity names, preserving order.
func ParseClientIdentities(values []string) ([]ClientIdentity, error) {
	result := make([]ClientIdentity, 0, len(values))

	for _, v := range values {
		identity, err := ParseClientIdentity(v)
		if err != nil {
			return nil, err
		}

		result = append(result, identity)
	}

	return result, nil
}
