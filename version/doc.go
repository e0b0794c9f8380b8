// Package version exposes build information for the running binary.
// Version and BuildTime are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/wellmind/authcore/version.Version=1.0.0"
package version
