// Package release contains the domain types of the release manifest.
//
// A Manifest lists one Branch per release line; FullVersion splits a
// version string such as "1.2.3-beta" into its short version and the
// branch it belongs to.
package release
