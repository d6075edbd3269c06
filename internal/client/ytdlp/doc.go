// Package ytdlp drives the external yt-dlp extractor: it locates the binary,
// fetches stream catalogs in JSON dump mode, parses the human-readable
// format listing, and runs downloads while streaming progress and
// classifying fatal output.
package ytdlp
