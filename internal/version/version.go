// Package version exposes build version information.
package version

// Version is the cinequery release version, overridable at build time via
// -ldflags "-X github.com/kalibr1/cinequery/internal/version.Version=...".
var Version = "0.1.0-dev"
