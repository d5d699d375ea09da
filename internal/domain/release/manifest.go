package release

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
)

// Info holds the format markers of a manifest.
type Info struct {
	// Version is the manifest format version.
	Version json.Number `json:"version"`
	// CompatVersion is the oldest format version readers must understand.
	CompatVersion json.Number `json:"compat_version"`
}

// Branch is the latest known state of one release line.
type Branch struct {
	// Name is unique within Manifest.Branches.
	Name string `json:"name"`
	// Version is the full version including the branch suffix.
	Version string `json:"version"`
	// UpdatedAt is the ISO-8601 time of the last update.
	UpdatedAt string `json:"updated_at"`
	// GitHubURL points at the GitHub release page.
	GitHubURL string `json:"github_url"`
	// BoothURL points at the BOOTH item page.
	BoothURL string `json:"booth_url"`

	// Extra keeps keys this package does not know about.
	Extra map[string]json.RawMessage `json:"-"`

	// states remembers known keys that were absent or null on read.
	states memberStates
}

// Manifest is the persisted list of release lines.
type Manifest struct {
	// Info is kept as read and written back unchanged.
	Info json.RawMessage `json:"info"`
	// DefaultBranch names the branch clients follow by default.
	DefaultBranch string `json:"default_branch"`
	// Branches keeps insertion order.
	Branches []Branch `json:"branches"`

	// Extra keeps keys this package does not know about.
	Extra map[string]json.RawMessage `json:"-"`

	// states remembers known keys that were absent, null or empty on read.
	states memberStates
}

// FormatInfo decodes Info. It returns nil when info is absent or null.
func (m *Manifest) FormatInfo() (*Info, error) {
	if len(m.Info) == 0 || isNull(m.Info) {
		return nil, nil
	}

	info := new(Info)
	if err := json.Unmarshal(m.Info, info); err != nil {
		return nil, err
	}

	return info, nil
}

// Release is the metadata written into a branch on update.
type Release struct {
	// Version is the full version string.
	Version string
	// UpdatedAt is the ISO-8601 update time.
	UpdatedAt string
	// GitHubURL points at the GitHub release page.
	GitHubURL string
	// BoothURL points at the BOOTH item page.
	BoothURL string
}

// FindBranch returns the first branch called name.
func (m *Manifest) FindBranch(name string) (*Branch, bool) {
	for i := range m.Branches {
		if m.Branches[i].Name == name {
			return &m.Branches[i], true
		}
	}

	return nil, false
}

// UpsertBranch writes r into the first branch called name, or appends a new
// branch when none exists. It reports whether a branch was appended.
// Only the first match is touched when duplicates are present.
func (m *Manifest) UpsertBranch(name string, r Release) (*Branch, bool) {
	delete(m.states, keyBranches)

	if b, ok := m.FindBranch(name); ok {
		b.Version = r.Version
		b.UpdatedAt = r.UpdatedAt
		b.GitHubURL = r.GitHubURL
		b.BoothURL = r.BoothURL

		b.states.forget(keyVersion, keyUpdatedAt, keyGitHubURL, keyBoothURL)

		return b, false
	}

	m.Branches = append(m.Branches, Branch{
		Name:      name,
		Version:   r.Version,
		UpdatedAt: r.UpdatedAt,
		GitHubURL: r.GitHubURL,
		BoothURL:  r.BoothURL,
	})

	return &m.Branches[len(m.Branches)-1], true
}

const (
	keyName      = "name"
	keyVersion   = "version"
	keyUpdatedAt = "updated_at"
	keyGitHubURL = "github_url"
	keyBoothURL  = "booth_url"

	keyInfo          = "info"
	keyDefaultBranch = "default_branch"
	keyBranches      = "branches"
)

// UnmarshalJSON decodes known keys and keeps the rest in Extra.
func (b *Branch) UnmarshalJSON(data []byte) error {
	type plain Branch

	var p plain

	extra, states, err := decodeObject(data, &p,
		keyName, keyVersion, keyUpdatedAt, keyGitHubURL, keyBoothURL)
	if err != nil {
		return err
	}

	*b = Branch(p)
	b.Extra = extra
	b.states = states

	return nil
}

// MarshalJSON encodes known keys followed by Extra.
// Keys that were absent or null on read stay that way.
func (b Branch) MarshalJSON() ([]byte, error) {
	return encodeObject([]member{
		{key: keyName, value: b.Name},
		{key: keyVersion, value: b.Version},
		{key: keyUpdatedAt, value: b.UpdatedAt},
		{key: keyGitHubURL, value: b.GitHubURL},
		{key: keyBoothURL, value: b.BoothURL},
	}, b.states, b.Extra)
}

// UnmarshalJSON decodes known keys and keeps the rest in Extra.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	type plain Manifest

	var p plain

	extra, states, err := decodeObject(data, &p, keyInfo, keyDefaultBranch, keyBranches)
	if err != nil {
		return err
	}

	*m = Manifest(p)
	m.Extra = extra
	m.states = states

	return nil
}

// MarshalJSON encodes known keys followed by Extra.
func (m Manifest) MarshalJSON() ([]byte, error) {
	branches := m.Branches
	if branches == nil {
		branches = []Branch{}
	}

	return encodeObject([]member{
		{key: keyInfo, value: m.Info, empty: len(m.Info) == 0},
		{key: keyDefaultBranch, value: m.DefaultBranch, empty: m.DefaultBranch == ""},
		{key: keyBranches, value: branches},
	}, m.states, m.Extra)
}

type memberState uint8

const (
	// memberAbsent marks a known key missing from the document.
	memberAbsent memberState = iota + 1
	// memberNull marks a known key set to null.
	memberNull
	// memberEmpty marks a known key set to "".
	memberEmpty
)

// memberStates records how known keys looked on read. Keys holding
// ordinary values are not recorded, so a fresh value has no entry.
type memberStates map[string]memberState

// forget drops the recorded state of keys that were just assigned.
func (s memberStates) forget(keys ...string) {
	for _, key := range keys {
		delete(s, key)
	}
}

// member is one known key of an object in output order.
type member struct {
	key   string
	value any
	// empty skips the member when it has no recorded state.
	empty bool
}

// decodeObject unmarshals data into target and reports the unknown members
// and the known keys that were absent, null or empty strings.
func decodeObject(data []byte, target any, known ...string) (map[string]json.RawMessage, memberStates, error) {
	if err := json.Unmarshal(data, target); err != nil {
		return nil, nil, err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, nil, err
	}

	var states memberStates

	record := func(key string, state memberState) {
		if states == nil {
			states = make(memberStates, len(known))
		}

		states[key] = state
	}

	for _, key := range known {
		raw, ok := all[key]

		switch {
		case !ok:
			record(key, memberAbsent)
		case isNull(raw):
			record(key, memberNull)
		case string(bytes.TrimSpace(raw)) == `""`:
			record(key, memberEmpty)
		}

		delete(all, key)
	}

	if len(all) == 0 {
		return nil, states, nil
	}

	return all, states, nil
}

// encodeObject writes members in order, then extra sorted by key.
func encodeObject(members []member, states memberStates, extra map[string]json.RawMessage) ([]byte, error) {
	var (
		buf   bytes.Buffer
		first = true
	)

	write := func(key string, value []byte) error {
		encodedKey, err := marshalObject(key)
		if err != nil {
			return err
		}

		if !first {
			buf.WriteByte(',')
		}

		first = false

		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(value)

		return nil
	}

	buf.WriteByte('{')

	for _, m := range members {
		var value []byte

		switch states[m.key] {
		case memberAbsent:
			continue
		case memberNull:
			value = []byte("null")
		case memberEmpty:
			if m.empty {
				value = []byte(`""`)
				break
			}

			fallthrough
		default:
			if m.empty {
				continue
			}

			encoded, err := marshalObject(m.value)
			if err != nil {
				return nil, err
			}

			value = encoded
		}

		if err := write(m.key, value); err != nil {
			return nil, err
		}
	}

	for _, key := range slices.Sorted(maps.Keys(extra)) {
		if err := write(key, extra[key]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// marshalObject encodes v without escaping HTML characters, so URLs with
// query strings stay readable in the manifest.
func marshalObject(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
