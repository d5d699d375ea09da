// Package version exposes build metadata of the action binaries.
//
// Version, Commit and BuildTime are injected with -ldflags "-X ..." by the
// release workflow and keep placeholder values for local builds.
package version
