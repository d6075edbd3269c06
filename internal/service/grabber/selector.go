package grabber

import (
	"slices"

	"github.com/oshokin/tube-grabber/internal/media"
)

// Selection is the outcome of Select.
type Selection struct {
	// FormatID is the chosen descriptor; always present in the catalog.
	FormatID string
	// AudioFormatID is the audio-only partner of a video-only pick.
	AudioFormatID string
	// Height is the height of the chosen video stream, 0 for audio.
	Height int
	// BelowFloor marks a video pick under the policy's minimum height.
	BelowFloor bool
	// Combined reports a single stream carrying both tracks.
	Combined bool
}

// FormatExpression renders the extractor format argument, e.g. "137+140" or "18".
func (s Selection) FormatExpression() string {
	if s.AudioFormatID == "" {
		return s.FormatID
	}

	return s.FormatID + "+" + s.AudioFormatID
}

// NeedsMerge reports whether the extractor has to merge two streams.
func (s Selection) NeedsMerge() bool {
	return s.AudioFormatID != ""
}

// Select picks the best stream of catalog for policy.
// It is deterministic and never returns an id absent from the catalog.
func Select(catalog *media.Catalog, policy media.QualityPolicy) (Selection, bool) {
	if catalog == nil || len(catalog.Streams) == 0 {
		return Selection{}, false
	}

	if policy.Kind == media.PolicyAudio {
		return selectAudio(catalog, policy)
	}

	return selectVideo(catalog, policy)
}

func selectAudio(catalog *media.Catalog, policy media.QualityPolicy) (Selection, bool) {
	if requested, ok := catalog.Lookup(policy.RequestedFormatID); ok && requested.HasAudio {
		return Selection{FormatID: requested.FormatID, Combined: requested.HasVideo}, true
	}

	best, ok := bestAudio(catalog)
	if !ok {
		return Selection{}, false
	}

	return Selection{FormatID: best.FormatID}, true
}

// bestAudio returns the audio-only descriptor with the highest bitrate, first seen on ties.
func bestAudio(catalog *media.Catalog) (*media.StreamDescriptor, bool) {
	var best *media.StreamDescriptor

	for i := range catalog.Streams {
		d := &catalog.Streams[i]
		if !d.IsAudioOnly() {
			continue
		}

		if best == nil || d.BitrateOrZero() > best.BitrateOrZero() {
			best = d
		}
	}

	return best, best != nil
}

// videoTier filters candidates for one step of the tiered search.
type videoTier struct {
	combined  bool
	minHeight func(policy media.QualityPolicy) int
}

//nolint:gochecknoglobals // Immutable tier table.
var videoTiers = []videoTier{
	{combined: true, minHeight: func(p media.QualityPolicy) int { return p.PreferredHeight }},
	{combined: true, minHeight: func(p media.QualityPolicy) int { return p.MinHeight }},
	{combined: false, minHeight: func(p media.QualityPolicy) int { return p.PreferredHeight }},
	{combined: false, minHeight: func(p media.QualityPolicy) int { return p.MinHeight }},
	{combined: true, minHeight: func(media.QualityPolicy) int { return 0 }},
	{combined: false, minHeight: func(media.QualityPolicy) int { return 0 }},
}

// floorTiers is the number of tiers that honor the minimum height.
const floorTiers = 4

func selectVideo(catalog *media.Catalog, policy media.QualityPolicy) (Selection, bool) {
	requested, hasRequested := catalog.Lookup(policy.RequestedFormatID)
	if hasRequested && !requested.HasVideo {
		hasRequested = false
	}

	if hasRequested && requested.HeightOrZero() >= policy.MinHeight {
		return videoSelection(catalog, requested, policy), true
	}

	for i, tier := range videoTiers {
		if hasRequested && i == floorTiers {
			// Nothing reached the floor, so the client's own pick beats any other sub-floor stream.
			return videoSelection(catalog, requested, policy), true
		}

		if d, ok := pickTier(catalog, tier.combined, tier.minHeight(policy)); ok {
			return videoSelection(catalog, d, policy), true
		}
	}

	return Selection{}, false
}

// pickTier returns the tallest matching descriptor, first seen on ties.
func pickTier(catalog *media.Catalog, combined bool, minHeight int) (*media.StreamDescriptor, bool) {
	candidates := make([]*media.StreamDescriptor, 0, len(catalog.Streams))

	for i := range catalog.Streams {
		d := &catalog.Streams[i]

		if combined && !d.IsCombined() || !combined && !d.IsVideoOnly() {
			continue
		}

		if d.HeightOrZero() < minHeight {
			continue
		}

		candidates = append(candidates, d)
	}

	if len(candidates) == 0 {
		return nil, false
	}

	slices.SortStableFunc(candidates, func(a, b *media.StreamDescriptor) int {
		return b.HeightOrZero() - a.HeightOrZero()
	})

	return candidates[0], true
}

func videoSelection(catalog *media.Catalog, d *media.StreamDescriptor, policy media.QualityPolicy) Selection {
	selection := Selection{
		FormatID:   d.FormatID,
		Height:     d.HeightOrZero(),
		BelowFloor: d.HeightOrZero() < policy.MinHeight,
		Combined:   d.IsCombined(),
	}

	if d.IsVideoOnly() {
		if audio, ok := bestAudio(catalog); ok {
			selection.AudioFormatID = audio.FormatID
		}
	}

	return selection
}
