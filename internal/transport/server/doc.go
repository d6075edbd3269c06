// Package server exposes the grabber service over HTTP: info and download
// endpoints for the browser UI, a health probe and Prometheus metrics.
package server
