package release

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseFullVersion checks the split on the first hyphen and the failure messages.
func TestParseFullVersion(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input  string
		short  string
		branch string
		err    error
	}{
		{input: "1.2.3-beta", short: "1.2.3", branch: "beta"},
		{input: "1.0.0-rc-1", short: "1.0.0", branch: "rc-1"},
		{input: "1.2.3-beta-2", short: "1.2.3", branch: "beta-2"},
		{input: "-stable", short: "", branch: "stable"},
		{input: "1.0.0-beta-", short: "1.0.0", branch: "beta-"},
		{input: "1.2.3", err: ErrNoHyphen},
		{input: "", err: ErrNoHyphen},
		{input: "1.2.3-", err: ErrHyphenAtEnd},
		{input: "-", err: ErrHyphenAtEnd},
	}

	for _, tc := range cases {
		got, err := ParseFullVersion(tc.input)
		if tc.err != nil {
			require.ErrorIs(t, err, tc.err, tc.input)
			continue
		}

		require.NoError(t, err, tc.input)
		require.Equal(t, tc.input, got.Raw)
		require.Equal(t, tc.input, got.String())
		require.Equal(t, tc.short, got.Short, tc.input)
		require.Equal(t, tc.branch, got.Branch, tc.input)
	}
}

// TestErrorMessages pins the messages workflow authors see.
func TestErrorMessages(t *testing.T) {
	t.Parallel()

	require.EqualError(t, ErrNoHyphen, "Version does not contain a hyphen.")
	require.EqualError(t, ErrHyphenAtEnd, "Hyphen is the end of the version string.")
}

// TestFullVersionSemver ensures short versions parse with and without a "v" prefix.
func TestFullVersionSemver(t *testing.T) {
	t.Parallel()

	v, err := ParseFullVersion("v1.4.0-stable")
	require.NoError(t, err)

	sv, err := v.Semver()
	require.NoError(t, err)
	require.Equal(t, "1.4.0", sv.String())

	v, err = ParseFullVersion("nightly-beta")
	require.NoError(t, err)

	_, err = v.Semver()
	require.Error(t, err)
}
