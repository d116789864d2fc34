// Package buildinfo holds version metadata stamped at build time via
// -ldflags "-X github.com/folio-dev/folio/internal/buildinfo.Version=...".
package buildinfo

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
