// Package grabber resolves a video URL into a finished audio or video file.
//
// A request walks a bounded cascade of (client identity, relaxation) steps:
// each step fetches the stream catalog with the external extractor, selects
// a stream for the quality policy and downloads it into a per-request scratch
// session. When the cascade is exhausted, or the extractor is missing, the
// library fallback fetches streams without any external process. The result
// is transcoded or remuxed into the requested container, tagged, read into
// memory, and every scratch file of the request is removed.
package grabber
