// Package version holds the build version, overridden at link time with
// -ldflags "-X github.com/klyro-io/klyro-cli/internal/version.Version=...".
package version

var Version = "dev"
