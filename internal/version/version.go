package version

import (
	"fmt"
	"runtime/debug"
)

// Placeholders left in Commit and BuildTime when no ldflags were passed.
const (
	noCommit    = "none"
	noBuildTime = "unknown"

	shortCommitLength = 7
)

var (
	// Version is the action release, overridden via -ldflags "-X ...version.Version=".
	Version = "0.1.0"
	// Commit is the git revision the binary was built from.
	Commit = noCommit
	// BuildTime is the UTC time of the build or of the last commit.
	BuildTime = noBuildTime
)

// Info is the build metadata printed by the version subcommand.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
	// Modified is set when the working tree had uncommitted changes.
	Modified bool
}

// Read returns the ldflags values, filling the placeholders from the VCS
// stamps Go embeds when the actions are run with "go run" or "go build".
func Read() Info {
	bi, _ := debug.ReadBuildInfo()

	return fromBuildInfo(bi)
}

func fromBuildInfo(bi *debug.BuildInfo) Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
	}

	if bi == nil {
		return info
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == noCommit && s.Value != "" {
				info.Commit = s.Value[:min(len(s.Value), shortCommitLength)]
			}
		case "vcs.time":
			if info.BuildTime == noBuildTime && s.Value != "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}

	return info
}

// String renders the metadata on one line.
func (i Info) String() string {
	commit := i.Commit
	if i.Modified {
		commit += "-dirty"
	}

	return fmt.Sprintf("version: %s, commit: %s, built at: %s", i.Version, commit, i.BuildTime)
}

// Short returns only the release version.
func Short() string {
	return Version
}

// Full returns the release version with commit and build time.
func Full() string {
	return Read().String()
}
