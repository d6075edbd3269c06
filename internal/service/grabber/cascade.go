package grabber

import (
	"slices"

	"github.com/oshokin/tube-grabber/internal/media"
)

// CascadeStep is one (identity, relaxation) combination of the retry loop.
type CascadeStep struct {
	// Identity is the emulated client.
	Identity media.ClientIdentity
	// Relaxation loosens the request policy.
	Relaxation media.Relaxation
}

// CascadeTable is the ordered, bounded list of steps one request may try.
type CascadeTable []CascadeStep

// BuildCascade orders steps relaxation-major: every identity is tried at one
// strictness level before the policy is loosened.
// The requested relaxation is skipped when the request names no format id.
func BuildCascade(
	identities []media.ClientIdentity,
	relaxations []media.Relaxation,
	hasRequestedFormat bool,
) CascadeTable {
	table := make(CascadeTable, 0, len(identities)*len(relaxations))

	for _, relaxation := range relaxations {
		if relaxation == media.RelaxRequested && !hasRequestedFormat && slices.Contains(relaxations, media.RelaxAboveFloor) {
			continue
		}

		for _, identity := range identities {
			table = append(table, CascadeStep{Identity: identity, Relaxation: relaxation})
		}
	}

	return table
}
