package constants

import "strings"

// Content types returned to clients.
const (
	ContentTypeMPEG        = "audio/mpeg"
	ContentTypeAudioMP4    = "audio/mp4"
	ContentTypeAudioWebM   = "audio/webm"
	ContentTypeAudioOgg    = "audio/ogg"
	ContentTypeVideoMP4    = "video/mp4"
	ContentTypeVideoWebM   = "video/webm"
	ContentTypeMatroska    = "video/x-matroska"
	ContentTypeOctetStream = "application/octet-stream"
)

// ContentTypeForExtension maps a container extension to a content type.
// isAudio picks the audio flavour of containers that carry either kind.
func ContentTypeForExtension(extension string, isAudio bool) string {
	switch strings.ToLower(extension) {
	case ExtensionMP3:
		return ContentTypeMPEG
	case ExtensionM4A:
		return ContentTypeAudioMP4
	case ExtensionMP4:
		if isAudio {
			return ContentTypeAudioMP4
		}

		return ContentTypeVideoMP4
	case ExtensionWebM:
		if isAudio {
			return ContentTypeAudioWebM
		}

		return ContentTypeVideoWebM
	case ExtensionOpus, ExtensionOgg:
		return ContentTypeAudioOgg
	case ExtensionMKV:
		return ContentTypeMatroska
	default:
		return ContentTypeOctetStream
	}
}
