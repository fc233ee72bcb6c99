// Package version holds build-time version information.
package version

// Version is the application version, set at build time with
// -ldflags "-X github.com/woodid012/renew-portfolio-api/internal/version.Version=v1.2.3".
var Version = "dev"
