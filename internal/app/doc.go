// Package app wires configuration, external clients and the grabber service
// together and implements the CLI commands: serve, get, info and config.
package app
