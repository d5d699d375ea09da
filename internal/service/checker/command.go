package checker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/oshokin/release-actions/internal/config"
	"github.com/oshokin/release-actions/internal/logger"
)

// Options holds the inputs of the version checker.
type Options struct {
	// Environment supplies the workspace both paths are joined onto.
	Environment *config.Environment
	// VersionTextFilePath locates the plain-text version file.
	VersionTextFilePath string
	// PackageJSONFilePath locates the JSON manifest with a "version" field.
	PackageJSONFilePath string
}

// Result describes a successful check.
type Result struct {
	// Version is the value both files agree on.
	Version string
}

var (
	// ErrEmptyPaths is returned when either input path is missing.
	//nolint:revive,staticcheck // The message is shown verbatim to workflow authors.
	ErrEmptyPaths = errors.New("Version text file path or package JSON file path is empty.")
	// ErrVersionMismatch is returned when the two versions differ.
	//nolint:revive,staticcheck // The message is shown verbatim to workflow authors.
	ErrVersionMismatch = errors.New("Version text does not match with package JSON version string.")

	errEnvironmentIsNotSet = errors.New("environment is not set")
)

// Validate checks both paths are set.
func (o *Options) Validate() error {
	if o.VersionTextFilePath == "" || o.PackageJSONFilePath == "" {
		return ErrEmptyPaths
	}

	return nil
}

// Run compares the raw contents of the version text file with the "version"
// field of the package JSON file. No whitespace is trimmed, so a trailing
// newline in the text file is a mismatch.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "version-checker")

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if opts.Environment == nil {
		return nil, errEnvironmentIsNotSet
	}

	textPath := filepath.Join(opts.Environment.Workspace, opts.VersionTextFilePath)
	jsonPath := filepath.Join(opts.Environment.Workspace, opts.PackageJSONFilePath)

	logger.DebugKV(ctx, "Reading version sources", "version_text", textPath, "package_json", jsonPath)

	versionText, err := os.ReadFile(textPath)
	if err != nil {
		return nil, err
	}

	packageJSON, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}

	var pkg any
	if err = json.Unmarshal(packageJSON, &pkg); err != nil {
		return nil, err
	}

	packageVersion, ok := versionField(pkg)
	if !ok || string(versionText) != packageVersion {
		logger.ErrorKV(ctx, "Versions differ",
			"version_text", string(versionText),
			"package_json", packageVersion,
		)

		return nil, ErrVersionMismatch
	}

	logger.InfoKV(ctx, "Versions match", "version", packageVersion)

	return &Result{Version: packageVersion}, nil
}

// versionField returns the top-level "version" string of a decoded document.
func versionField(doc any) (string, bool) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return "", false
	}

	version, ok := obj["version"].(string)

	return version, ok
}
