// Package buildinfo carries build metadata injected at link time.
package buildinfo

// Set via -ldflags "-X toolscout/internal/buildinfo.Version=... -X toolscout/internal/buildinfo.Commit=...".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
