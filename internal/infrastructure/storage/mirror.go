package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Mirror is the durable backing for the in-memory order collection: one
// serialized blob under a fixed name. Absence is not an error.
type Mirror interface {
	// Load reads the blob; a missing blob returns (nil, nil)
	Load() ([]byte, error)

	// Save replaces the blob
	Save(data []byte) error
}

// FileMirror persists the blob as a single local file
type FileMirror struct {
	path string
}

// NewFileMirror creates a mirror at the given file path
func NewFileMirror(path string) *FileMirror {
	return &FileMirror{path: path}
}

// Load reads the mirror file
func (m *FileMirror) Load() ([]byte, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read mirror %s: %w", m.path, err)
	}
	return data, nil
}

// Save writes the blob via a temp file and rename, so a crash mid-write
// never leaves a half-written mirror.
func (m *FileMirror) Save(data []byte) error {
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create mirror dir %s: %w", dir, err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write mirror temp %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("rename mirror %s: %w", m.path, err)
	}
	return nil
}
