package release

import (
	"errors"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// branchSeparator splits the short version from the branch name.
const branchSeparator = "-"

var (
	// ErrNoHyphen is returned for full versions without a branch suffix.
	//nolint:revive,staticcheck // The message is shown verbatim to workflow authors.
	ErrNoHyphen = errors.New("Version does not contain a hyphen.")
	// ErrHyphenAtEnd is returned when the branch suffix is empty.
	//nolint:revive,staticcheck // The message is shown verbatim to workflow authors.
	ErrHyphenAtEnd = errors.New("Hyphen is the end of the version string.")
)

// FullVersion is a version string carrying its branch, e.g. "1.2.3-beta".
type FullVersion struct {
	// Raw is the version exactly as supplied.
	Raw string
	// Short is everything before the first hyphen.
	Short string
	// Branch is everything after the first hyphen.
	Branch string
}

// ParseFullVersion splits s at its first hyphen.
// "1.0.0-rc-1" yields Short "1.0.0" and Branch "rc-1".
func ParseFullVersion(s string) (FullVersion, error) {
	short, branch, found := strings.Cut(s, branchSeparator)
	if !found {
		return FullVersion{}, ErrNoHyphen
	}

	if branch == "" {
		return FullVersion{}, ErrHyphenAtEnd
	}

	return FullVersion{
		Raw:    s,
		Short:  short,
		Branch: branch,
	}, nil
}

// String returns the raw version.
func (v FullVersion) String() string {
	return v.Raw
}

// Semver parses the short version as a semantic version, tolerating a "v" prefix.
func (v FullVersion) Semver() (*semver.Version, error) {
	return semver.NewVersion(strings.TrimPrefix(v.Short, "v"))
}
