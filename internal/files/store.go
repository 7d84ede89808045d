package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store keeps uploaded files on local disk. The returned refs are URL paths
// under /uploads/ served by the HTTP layer; the rest of the system treats
// them as opaque.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory files are stored in.
func (s *Store) Dir() string {
	return s.dir
}

// Save stores the content under a unique name derived from the original
// filename and returns the file ref.
func (s *Store) Save(filename string, r io.Reader) (string, error) {
	name := uuid.NewString() + "-" + sanitize(filename)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write file: %w", err)
	}

	return "/uploads/" + name, nil
}

// sanitize strips path components and whitespace from a client filename.
func sanitize(filename string) string {
	name := filepath.Base(filepath.Clean(filename))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "." || name == ".." || name == string(filepath.Separator) || name == "" {
		name = "file"
	}
	return name
}
