// Package media holds the data model shared by the extractor client, the
// library client and the grabber service: stream descriptors, catalogs,
// client identities and quality policies.
package media
