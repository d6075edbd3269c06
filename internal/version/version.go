// Package version exposes build metadata injected through -ldflags.
package version

//nolint:gochecknoglobals // Populated by the linker at build time.
var (
	// Version is the semantic version of the build.
	Version = "0.1.0"
	// Commit is the VCS revision the binary was built from.
	Commit = "none"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// Name is the program name used in version output and User-Agent strings.
const Name = "tube-grabber"

// Short returns the bare version string.
func Short() string {
	return Version
}

// Full returns version, commit and build time in one line.
func Full() string {
	return Name + " version: " + Version + ", commit: " + Commit + ", built at: " + BuildTime
}

// Product returns the product token sent to services the grabber talks to, e.g. "tube-grabber/0.1.0".
func Product() string {
	return Name + "/" + Version
}
