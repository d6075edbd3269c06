// Package youtube wraps the kkdai/youtube library for the fallback path:
// it fetches asset details and the stream list in one call, converts the
// library formats into stream descriptors, and copies streams to disk
// without spawning any external process.
package youtube
