// Package ffmpeg wraps the ffmpeg binary for the three operations the
// packager needs: mp3 transcoding, container remuxing and muxing separate
// video and audio tracks.
package ffmpeg
