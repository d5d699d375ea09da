// Package checker verifies that a plain-text version file and the version
// field of a package JSON manifest agree byte for byte.
package checker
