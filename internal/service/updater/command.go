package updater

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/release-actions/internal/config"
	"github.com/oshokin/release-actions/internal/domain/release"
	"github.com/oshokin/release-actions/internal/logger"
	repository "github.com/oshokin/release-actions/internal/repository/manifest"
)

// Options are the inputs of the manifest updater.
type Options struct {
	// Environment supplies the workspace and the repository identifier.
	Environment *config.Environment
	// FullVersion is the released version including its branch, e.g. "1.2.3-beta".
	FullVersion string
	// ManifestFilePath locates the release manifest; relative paths use the workspace.
	ManifestFilePath string
	// UpdatedAt is the ISO-8601 release time; defaults to Clock().
	UpdatedAt string
	// ReleaseGitHubURL defaults to the release page of FullVersion.
	ReleaseGitHubURL string
	// ReleaseBoothURL is the BOOTH item page of the release.
	ReleaseBoothURL string
	// Clock returns the current time; defaults to time.Now.
	Clock func() time.Time
}

// Result describes the branch record written by Run.
type Result struct {
	// ManifestPath is the file that was rewritten.
	ManifestPath string
	// Version is the parsed full version.
	Version release.FullVersion
	// Branch is the record as written.
	Branch release.Branch
	// Created is true when the branch was appended.
	Created bool
}

// TimestampLayout renders UpdatedAt defaults: UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// gitHubReleaseURL is the release page pattern: repository, then tag.
const gitHubReleaseURL = "https://github.com/%s/releases/tag/%s"

var (
	// ErrEmptyInputs is returned when a required input is missing.
	//nolint:revive,staticcheck // The message is shown verbatim to workflow authors.
	ErrEmptyInputs = errors.New("Full version, manifest file path or release booth url is empty.")

	errEnvironmentIsNotSet = errors.New("environment is not set")
)

// manifestUpdater holds the resolved inputs of a single run.
type manifestUpdater struct {
	// version is the parsed full version.
	version release.FullVersion
	// release is the metadata written into the branch.
	release release.Release
	// repo reads and writes the manifest.
	repo repository.Repository
	// path is where repo keeps the manifest, for logs and the result.
	path string
}

// Validate checks the inputs that do not need the environment: required
// values first, then the shape of the full version.
func (o *Options) Validate() error {
	if o.FullVersion == "" || o.ManifestFilePath == "" || o.ReleaseBoothURL == "" {
		return ErrEmptyInputs
	}

	_, err := release.ParseFullVersion(o.FullVersion)

	return err
}

// Run validates the inputs, upserts the branch and saves the manifest.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "manifest-updater")

	u, err := newManifestUpdater(ctx, opts)
	if err != nil {
		return nil, err
	}

	return u.Run(ctx)
}

// newManifestUpdater checks inputs in order and fills defaults.
// Nothing touches the file system before all checks pass.
func newManifestUpdater(ctx context.Context, opts *Options) (*manifestUpdater, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	env := opts.Environment
	if env == nil {
		return nil, errEnvironmentIsNotSet
	}

	updatedAt := opts.UpdatedAt
	if updatedAt == "" {
		clock := opts.Clock
		if clock == nil {
			clock = time.Now
		}

		updatedAt = clock().UTC().Format(TimestampLayout)
		logger.DebugKV(ctx, "Using current time as release time", "updated_at", updatedAt)
	}

	gitHubURL := opts.ReleaseGitHubURL
	if gitHubURL == "" {
		if !env.HasRepository() {
			logger.WarnKV(ctx, "Repository is not an owner/name pair, the release URL may be broken",
				"variable", config.RepositoryEnv,
				"repository", env.Repository,
			)
		}

		gitHubURL = DefaultGitHubURL(env.Repository, opts.FullVersion)
		logger.DebugKV(ctx, "Using default release URL", "github_url", gitHubURL)
	}

	// Validate has already accepted the version.
	version, _ := release.ParseFullVersion(opts.FullVersion)
	repo := repository.NewFileRepository(env.Resolve(opts.ManifestFilePath))

	return &manifestUpdater{
		version: version,
		release: release.Release{
			Version:   version.Raw,
			UpdatedAt: updatedAt,
			GitHubURL: gitHubURL,
			BoothURL:  opts.ReleaseBoothURL,
		},
		repo: repo,
		path: repo.Path(),
	}, nil
}

// Run loads the manifest, updates the branch and writes the manifest back.
func (u *manifestUpdater) Run(ctx context.Context) (*Result, error) {
	ctx = logger.WithKV(ctx, "branch", u.version.Branch)

	logger.InfoKV(ctx, "Updating release manifest",
		"short_version", u.version.Short,
		"full_version", u.version.Raw,
		"manifest", u.path,
	)

	if _, err := u.version.Semver(); err != nil {
		logger.WarnKV(ctx, "Short version is not a semantic version", "short_version", u.version.Short, "error", err)
	}

	m, err := u.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	if info, infoErr := m.FormatInfo(); infoErr != nil {
		logger.DebugKV(ctx, "Manifest format markers are not numbers", "error", infoErr)
	} else if info != nil {
		logger.DebugKV(ctx, "Manifest format", "version", info.Version, "compat_version", info.CompatVersion)
	}

	branch, created := m.UpsertBranch(u.version.Branch, u.release)
	if created {
		logger.Infof(ctx, "Branch not found, appending it as entry #%d", len(m.Branches))
	} else {
		logger.Info(ctx, "Branch found, overwriting its release")
	}

	result := &Result{
		ManifestPath: u.path,
		Version:      u.version,
		Branch:       *branch,
		Created:      created,
	}

	if err = u.repo.Save(ctx, m); err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Release manifest saved", "branches", len(m.Branches))

	return result, nil
}

// DefaultGitHubURL returns the release page of fullVersion in repo.
// The version is used verbatim as the tag.
func DefaultGitHubURL(repo, fullVersion string) string {
	return fmt.Sprintf(gitHubReleaseURL, repo, fullVersion)
}
