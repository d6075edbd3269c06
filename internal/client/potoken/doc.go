// Package potoken supplies proof-of-origin tokens that let the extractor
// impersonate browser-like clients. Tokens come from static configuration or
// from a token provider service and are cached per content binding.
package potoken
