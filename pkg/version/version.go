// Package version holds build-time version metadata injected via ldflags.
package version

// Version is the semantic version of the binary.
var Version = "dev"

// Commit is the git commit the binary was built from.
var Commit = "unknown"

// Date is the build timestamp.
var Date = "unknown"
