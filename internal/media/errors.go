package media

import "errors"

// Static error definitions for better error handling.
var (
	// ErrUnknownOutputFormat indicates an output format other than mp3 or mp4.
	ErrUnknownOutputFormat = errors.New("format must be mp3 or mp4")
	// ErrUnknownIdentity indicates an unsupported client identity name.
	ErrUnknownIdentity = errors.New("unknown client identity")
	// ErrUnknownRelaxation indicates an unsupported relaxation name.
	ErrUnknownRelaxation = errors.New("unknown relaxation")
	// ErrInvalidQuality indicates an unparsable quality value.
	ErrInvalidQuality = errors.New("invalid quality")
)
