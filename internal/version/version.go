// Package version carries the build metadata stamped into the chemsearch
// binary at link time.
package version

// Overridden via -ldflags "-X .../internal/version.Version=..." by the
// release build.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
