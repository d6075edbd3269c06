// Package http provides the outbound HTTP client chain shared by the library
// fallback and the token service client: request/response debug logging with
// secret redaction and User-Agent header injection.
package http
