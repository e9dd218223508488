// Package upload stores uploaded document files on local disk.
package upload

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store writes uploads under a base directory with collision-free names.
type Store struct {
	dir      string
	maxBytes int64
}

// NewStore creates the base directory if needed.
func NewStore(dir string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Store{dir: dir, maxBytes: maxBytes}, nil
}

// MaxBytes returns the configured upload size cap.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Save writes data under a uuid-prefixed variant of originalName and returns
// the stored path.
func (s *Store) Save(data []byte, originalName string) (string, error) {
	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("file too large: %d bytes (limit %d)", len(data), s.maxBytes)
	}

	name := fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(originalName))
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save uploaded file: %w", err)
	}
	return path, nil
}

// Read returns the content of a stored file.
func (s *Store) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored file: %w", err)
	}
	return data, nil
}

// Delete removes a stored file. Missing files are not an error.
func (s *Store) Delete(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
