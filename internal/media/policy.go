package media

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PolicyKind distinguishes audio and video selection.
type PolicyKind string

const (
	// PolicyAudio selects the best audio-only stream.
	PolicyAudio PolicyKind = "audio"
	// PolicyVideo selects a video stream by height tiers.
	PolicyVideo PolicyKind = "video"
)

// QualityPolicy is the user's preference for stream selection.
type QualityPolicy struct {
	// Kind is audio or video.
	Kind PolicyKind
	// MinHeight is the floor for video selection.
	MinHeight int
	// PreferredHeight is the target for video selection.
	PreferredHeight int
	// RequestedFormatID is an explicit catalog id from the client, possibly empty.
	RequestedFormatID string
}

// Relaxation loosens a policy for later cascade steps.
type Relaxation string

const (
	// RelaxRequested keeps the policy unchanged.
	RelaxRequested Relaxation = "requested"
	// RelaxAboveFloor drops the requested id and keeps the height tiers.
	RelaxAboveFloor Relaxation = "above_floor"
	// RelaxUnrestricted leaves the choice to the extractor's generic selector.
	RelaxUnrestricted Relaxation = "unrestricted"
)

// ParseRelaxation validates a relaxation name.
func ParseRelaxation(value string) (Relaxation, error) {
	switch r := Relaxation(strings.ToLower(strings.TrimSpace(value))); r {
	case RelaxRequested, RelaxAboveFloor, RelaxUnrestricted:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRelaxation, value)
	}
}

// ParseRelaxations validates a list of relaxation names, preserving order.
func ParseRelaxations(values []string) ([]Relaxation, error) {
	result := make([]Relaxation, 0, len(values))

	for _, v := range values {
		r, err := ParseRelaxation(v)
		if err != nil {
			return nil, err
		}

		result = append(result, r)
	}

	return result, nil
}

// Apply returns the policy loosened by r.
func (p QualityPolicy) Apply(r Relaxation) QualityPolicy {
	switch r {
	case RelaxAboveFloor:
		p.RequestedFormatID = ""
	case RelaxUnrestricted:
		p.RequestedFormatID = ""
		p.MinHeight = 0
	case RelaxRequested:
	}

	return p
}

//nolint:gochecknoglobals // This is immutable, pre-compiled regex pattern and used as a constant.
var heightPattern = regexp.MustCompile(`^(?P<height>\d{3,4})[pP]$`)

// PolicyFromRequest builds a policy from the client's format and optional quality.
// A quality such as "720p" sets the preferred height and "best" keeps the defaults;
// any other non-empty value, a bare number included, is treated as a catalog format id.
func PolicyFromRequest(format OutputFormat, quality string, preferredHeight, minHeight int) (QualityPolicy, error) {
	policy := QualityPolicy{
		Kind:            PolicyVideo,
		MinHeight:       minHeight,
		PreferredHeight: preferredHeight,
	}

	if format.IsAudio() {
		policy = QualityPolicy{Kind: PolicyAudio}
	}

	quality = strings.TrimSpace(quality)

	switch {
	case quality == "", strings.EqualFold(quality, "best"):
	case heightPattern.MatchString(quality):
		height, err := strconv.Atoi(strings.TrimRight(quality, "pP"))
		if err != nil {
			return QualityPolicy{}, fmt.Errorf("%w: %q", ErrInvalidQuality, quality)
		}

		if policy.Kind == PolicyVideo {
			policy.PreferredHeight = height
			policy.MinHeight = min(policy.MinHeight, height)
		}
	case strings.ContainsAny(quality, " \t/+"):
		return QualityPolicy{}, fmt.Errorf("%w: %q", ErrInvalidQuality, quality)
	default:
		policy.RequestedFormatID = quality
	}

	return policy, nil
}
