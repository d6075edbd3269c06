// Package utils holds small helpers shared by the clients and the grabber service:
// filename sanitizing, home directory expansion and User-Agent rotation.
package utils
