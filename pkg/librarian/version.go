// Package librarian exposes the tool version.
package librarian

// Version is the librarian release version, overridable at build time via
// -ldflags "-X github.com/srulre/classiq-library/pkg/librarian.Version=...".
var Version = "0.3.0"
