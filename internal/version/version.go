// Package version contains the current version of the ld-openfeature-bridge service.
package version

// Version is the package version. It is set by the release process.
var Version = "1.0.0"
