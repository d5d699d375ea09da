// Package updater records a published release in the release manifest.
//
// The full version ("1.2.3-beta") names the branch to update; the branch
// record is overwritten in place or appended, and the manifest is written
// back to the same file.
package updater
