package constants

import "os"

const (
	// DefaultFilePermissions sets the default permissions for regular files: (rw-r--r--).
	DefaultFilePermissions os.FileMode = 0o644

	// DefaultFolderPermissions sets the default permissions for regular folders: (rwxr-xr-x).
	DefaultFolderPermissions os.FileMode = 0o755
)

// File extension constants.
const (
	ExtensionMP3  = ".mp3"
	ExtensionMP4  = ".mp4"
	ExtensionM4A  = ".m4a"
	ExtensionWebM = ".webm"
	ExtensionMKV  = ".mkv"
	ExtensionOpus = ".opus"
	ExtensionOgg  = ".ogg"
	ExtensionBin  = ".bin"
)

// Suffixes of files the extractor leaves behind while a download is in flight.
const (
	SuffixPartial  = ".part"
	SuffixYTDL     = ".ytdl"
	SuffixFragment = ".frag"
	SuffixTemp     = ".temp"
)
