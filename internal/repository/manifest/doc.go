// Package manifest persists release manifests as JSON files.
//
// FileRepository reads a manifest, checks that it has the shape the updater
// relies on and writes it back with four-space indentation in one call.
package manifest
