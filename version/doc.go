// Package version reports the railskit build version.
//
// Version, commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/railskit/version.Version=1.2.0" ./cmd/railsctl
//
// Unset values fall back to the module build info.
package version
