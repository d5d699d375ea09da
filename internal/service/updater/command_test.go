package updater

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/release-actions/internal/config"
	"github.com/oshokin/release-actions/internal/domain/release"
)

const stableManifest = `{"branches":[{"name":"stable","version":"1.0.0-stable","updated_at":"t0","github_url":"g0","booth_url":"b0"}]}`

// fixedClock returns a clock frozen at a known instant.
func fixedClock() time.Time {
	return time.Date(2024, time.May, 1, 12, 30, 45, 123_000_000, time.FixedZone("JST", 9*60*60))
}

// newOptions writes contents as manifest.json into a fresh workspace.
func newOptions(t *testing.T, contents string) *Options {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(contents), 0o600))

	return &Options{
		Environment:      &config.Environment{Workspace: dir, Repository: "oshokin/app"},
		ManifestFilePath: "manifest.json",
		ReleaseBoothURL:  "b1",
		Clock:            fixedClock,
	}
}

// readManifest decodes the manifest written by Run.
func readManifest(t *testing.T, opts *Options) *release.Manifest {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(opts.Environment.Workspace, opts.ManifestFilePath))
	require.NoError(t, err)

	m := new(release.Manifest)
	require.NoError(t, json.Unmarshal(data, m))

	return m
}

// TestRun_EmptyInputs verifies required inputs are checked first.
func TestRun_EmptyInputs(t *testing.T) {
	t.Parallel()

	for _, opts := range []*Options{
		{ManifestFilePath: "m.json", ReleaseBoothURL: "b"},
		{FullVersion: "1.0.0-beta", ReleaseBoothURL: "b"},
		{FullVersion: "1.0.0-beta", ManifestFilePath: "m.json"},
		// Malformed version is not reported before missing inputs.
		{FullVersion: "1.0.0", ManifestFilePath: "m.json"},
	} {
		_, err := Run(context.Background(), opts)
		require.ErrorIs(t, err, ErrEmptyInputs)
		require.EqualError(t, err, "Full version, manifest file path or release booth url is empty.")
	}
}

// TestRun_MalformedVersion checks hyphen validation happens before the manifest is read.
func TestRun_MalformedVersion(t *testing.T) {
	t.Parallel()

	opts := newOptions(t, stableManifest)
	opts.ManifestFilePath = "missing.json"

	opts.FullVersion = "1.1.0"
	_, err := Run(context.Background(), opts)
	require.ErrorIs(t, err, release.ErrNoHyphen)

	opts.FullVersion = "1.1.0-"
	_, err = Run(context.Background(), opts)
	require.ErrorIs(t, err, release.ErrHyphenAtEnd)
}

// TestRun_UpdatesExistingBranch is the end-to-end example with explicit metadata.
func TestRun_UpdatesExistingBranch(t *testing.T) {
	t.Parallel()

	opts := newOptions(t, stableManifest)
	opts.FullVersion = "1.1.0-stable"
	opts.UpdatedAt = "t1"
	opts.ReleaseGitHubURL = "g1"

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.False(t, res.Created)
	require.Equal(t, "1.1.0", res.Version.Short)

	want := release.Branch{
		Name:      "stable",
		Version:   "1.1.0-stable",
		UpdatedAt: "t1",
		GitHubURL: "g1",
		BoothURL:  "b1",
	}
	require.Equal(t, want, res.Branch)
	require.Equal(t, []release.Branch{want}, readManifest(t, opts).Branches)
}

// TestRun_AppendsNewBranch verifies a missing branch is appended and others are untouched.
func TestRun_AppendsNewBranch(t *testing.T) {
	t.Parallel()

	opts := newOptions(t, stableManifest)
	opts.FullVersion = "1.0.0-rc-1"
	opts.UpdatedAt = "t1"
	opts.ReleaseGitHubURL = "g1"

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.True(t, res.Created)
	require.Equal(t, "rc-1", res.Branch.Name)

	m := readManifest(t, opts)
	require.Len(t, m.Branches, 2)
	require.Equal(t, release.Branch{
		Name: "stable", Version: "1.0.0-stable", UpdatedAt: "t0", GitHubURL: "g0", BoothURL: "b0",
	}, m.Branches[0])
	require.Equal(t, release.Branch{
		Name: "rc-1", Version: "1.0.0-rc-1", UpdatedAt: "t1", GitHubURL: "g1", BoothURL: "b1",
	}, m.Branches[1])
}

// TestRun_TwiceKeepsOneRecord checks the second update of a branch wins.
func TestRun_TwiceKeepsOneRecord(t *testing.T) {
	t.Parallel()

	opts := newOptions(t, stableManifest)
	opts.FullVersion = "2.0.0-beta"
	opts.UpdatedAt = "first"

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	opts.FullVersion = "2.0.1-beta"
	opts.UpdatedAt = "second"
	opts.ReleaseBoothURL = "b2"

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.False(t, res.Created)

	m := readManifest(t, opts)
	require.Len(t, m.Branches, 2)
	require.Equal(t, "2.0.1-beta", m.Branches[1].Version)
	require.Equal(t, "second", m.Branches[1].UpdatedAt)
	require.Equal(t, "b2", m.Branches[1].BoothURL)
}

// TestRun_Defaults verifies the generated timestamp and release URL.
func TestRun_Defaults(t *testing.T) {
	t.Parallel()

	opts := newOptions(t, stableManifest)
	opts.FullVersion = "1.1.0-stable+build.5"

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, "2024-05-01T03:30:45.123Z", res.Branch.UpdatedAt)
	require.Equal(t, "https://github.com/oshokin/app/releases/tag/1.1.0-stable+build.5", res.Branch.GitHubURL)
	require.Equal(t, "stable+build.5", res.Branch.Name)
}

// TestRun_DefaultClock ensures the real clock produces a parsable timestamp near now.
func TestRun_DefaultClock(t *testing.T) {
	t.Parallel()

	opts := newOptions(t, stableManifest)
	opts.FullVersion = "1.1.0-stable"
	opts.Clock = nil

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)

	ts, err := time.Parse(time.RFC3339Nano, res.Branch.UpdatedAt)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now(), ts, time.Minute)
}

// TestRun_KeepsManifestMetadata ensures info, default_branch and unknown keys survive.
func TestRun_KeepsManifestMetadata(t *testing.T) {
	t.Parallel()

	input := `{
		"info": {"version": 1, "compat_version": 1},
		"default_branch": "stable",
		"branches": [{"name": "stable", "version": "1.0.0-stable", "updated_at": "t0",
			"github_url": "g0", "booth_url": "b0", "channel": "public"}]
	}`

	opts := newOptions(t, input)
	opts.FullVersion = "1.0.1-stable"
	opts.UpdatedAt = "t1"
	opts.ReleaseGitHubURL = "g1"

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(opts.Environment.Workspace, "manifest.json"))
	require.NoError(t, err)
	require.JSONEq(t, `{
		"info": {"version": 1, "compat_version": 1},
		"default_branch": "stable",
		"branches": [{"name": "stable", "version": "1.0.1-stable", "updated_at": "t1",
			"github_url": "g1", "booth_url": "b1", "channel": "public"}]
	}`, string(data))
	require.Contains(t, string(data), "\n    \"info\": {\n        \"version\": 1,")
}

// TestRun_ManifestErrors ensures read and parse errors are returned unchanged.
func TestRun_ManifestErrors(t *testing.T) {
	t.Parallel()

	opts := newOptions(t, `{"branches": [}`)
	opts.FullVersion = "1.0.0-beta"

	_, err := Run(context.Background(), opts)
	require.EqualError(t, err, "invalid character '}' looking for beginning of value")

	opts.ManifestFilePath = "missing.json"

	_, err = Run(context.Background(), opts)
	require.ErrorIs(t, err, fs.ErrNotExist)
}

// TestDefaultGitHubURL keeps the version verbatim in the tag segment.
func TestDefaultGitHubURL(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		"https://github.com/oshokin/app/releases/tag/1.0.0-beta+meta/x",
		DefaultGitHubURL("oshokin/app", "1.0.0-beta+meta/x"),
	)
}

// memoryRepository keeps a manifest in memory and fails Save with saveErr.
type memoryRepository struct {
	manifest *release.Manifest
	saveErr  error
	saved    int
}

func (r *memoryRepository) Load(context.Context) (*release.Manifest, error) {
	return r.manifest, nil
}

func (r *memoryRepository) Save(context.Context, *release.Manifest) error {
	r.saved++

	return r.saveErr
}

// TestManifestUpdater_SaveError ensures a failed write is returned and no result is produced.
func TestManifestUpdater_SaveError(t *testing.T) {
	t.Parallel()

	version, err := release.ParseFullVersion("1.0.0-beta")
	require.NoError(t, err)

	repo := &memoryRepository{
		manifest: new(release.Manifest),
		saveErr:  errors.New("disk full"),
	}

	u := &manifestUpdater{
		version: version,
		release: release.Release{Version: version.Raw, UpdatedAt: "t", GitHubURL: "g", BoothURL: "b"},
		repo:    repo,
		path:    "manifest.json",
	}

	res, err := u.Run(context.Background())
	require.EqualError(t, err, "disk full")
	require.Nil(t, res)
	require.Equal(t, 1, repo.saved)
}

// TestOptionsValidate checks input errors are found without an environment.
func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	opts := &Options{FullVersion: "1.0.0-beta", ManifestFilePath: "m.json", ReleaseBoothURL: "b"}
	require.NoError(t, opts.Validate())

	opts.ReleaseBoothURL = ""
	require.ErrorIs(t, opts.Validate(), ErrEmptyInputs)

	opts.ReleaseBoothURL = "b"
	opts.FullVersion = "1.0.0-"
	require.ErrorIs(t, opts.Validate(), release.ErrHyphenAtEnd)
}

// TestRun_LooseRepository verifies a repository that is not owner/name still
// produces a release URL and inputs keep their error precedence.
func TestRun_LooseRepository(t *testing.T) {
	t.Parallel()

	opts := newOptions(t, stableManifest)
	opts.Environment.Repository = "my-org"
	opts.FullVersion = "1.1.0-stable"

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, "https://github.com/my-org/releases/tag/1.1.0-stable", res.Branch.GitHubURL)

	_, err = Run(context.Background(), &Options{
		Environment:      &config.Environment{Workspace: t.TempDir(), Repository: "my-org"},
		ManifestFilePath: "manifest.json",
	})
	require.ErrorIs(t, err, ErrEmptyInputs)
}
