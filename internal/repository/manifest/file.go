package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/oshokin/release-actions/internal/config"
	"github.com/oshokin/release-actions/internal/domain/release"
)

// indent is the on-disk indentation of release manifests.
const indent = "    "

// Repository defines persistence operations for release manifests.
type Repository interface {
	Load(ctx context.Context) (*release.Manifest, error)
	Save(ctx context.Context, m *release.Manifest) error
}

var _ Repository = (*FileRepository)(nil)

// FileRepository keeps a release manifest in a JSON file on disk.
// Read and parse errors are returned unwrapped so the runner shows the
// underlying message as is.
type FileRepository struct {
	// path is the filesystem location of the manifest.
	path string
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the manifest location.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads and decodes the manifest.
func (r *FileRepository) Load(_ context.Context) (*release.Manifest, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		return nil, err
	}

	// Syntax errors come from encoding/json so the message matches the parser's.
	var doc any
	if err = json.Unmarshal(contents, &doc); err != nil {
		return nil, err
	}

	if err = checkShape(contents); err != nil {
		return nil, err
	}

	m := new(release.Manifest)
	if err = json.Unmarshal(contents, m); err != nil {
		return nil, err
	}

	return m, nil
}

// Save encodes the manifest and replaces the file contents with a single write.
func (r *FileRepository) Save(_ context.Context, m *release.Manifest) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}

	return os.WriteFile(r.path, data, config.DefaultFilePermissions)
}

// Encode renders m the way it is stored on disk.
func Encode(m *release.Manifest) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)

	if err := enc.Encode(m); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
